// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// PHASE
// =============================================================================

// Phase is the tagged pending state: Idle when RequestID is uuid.Nil,
// otherwise Awaiting(RequestID).
type Phase struct {
	RequestID uuid.UUID
}

// Idle is the phase with no outstanding request.
var Idle = Phase{}

// Awaiting returns the phase for an outstanding request.
func Awaiting(id uuid.UUID) Phase { return Phase{RequestID: id} }

// Pending reports whether the phase is Awaiting.
func (p Phase) Pending() bool { return p.RequestID != uuid.Nil }

// String returns "idle" or "awaiting(<id>)".
func (p Phase) String() string {
	if !p.Pending() {
		return "idle"
	}
	return "awaiting(" + p.RequestID.String() + ")"
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind says what changed.
type EventKind int

const (
	// TurnAppended fires after Append.
	TurnAppended EventKind = iota
	// PhaseChanged fires after Await or Settle changes the phase.
	PhaseChanged
)

// Event describes one state change. Turn is set for TurnAppended.
type Event struct {
	Kind  EventKind
	Turn  Turn
	Phase Phase
}

// Observer receives events synchronously, after the store lock is released,
// in the order the changes happened.
type Observer func(Event)

// =============================================================================
// STORE
// =============================================================================

// Store holds the transcript and phase. It is safe for concurrent use; in
// pnuchat only the dispatcher writes to it.
type Store struct {
	mu        sync.RWMutex
	turns     []Turn
	phase     Phase
	observers []subscription
	nextObs   int

	// notifyMu orders observer delivery across writers.
	notifyMu sync.Mutex
}

// NewStore creates an empty, idle store.
func NewStore() *Store {
	return &Store{}
}

// Append adds turn to the end of the transcript. Any text is accepted.
func (s *Store) Append(turn Turn) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.turns = append(s.turns, turn)
	phase := s.phase
	s.mu.Unlock()

	s.notify(Event{Kind: TurnAppended, Turn: turn, Phase: phase})
}

// Await marks request id as outstanding.
func (s *Store) Await(id uuid.UUID) {
	s.setPhase(Awaiting(id))
}

// Settle returns the store to Idle.
func (s *Store) Settle() {
	s.setPhase(Idle)
}

// SetPending sets the busy flag. true awaits a fresh request ID.
func (s *Store) SetPending(pending bool) {
	if pending {
		s.Await(uuid.New())
		return
	}
	s.Settle()
}

func (s *Store) setPhase(p Phase) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := s.phase != p
	s.phase = p
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: PhaseChanged, Phase: p})
	}
}

// Transcript returns a copy of the turns in display order.
func (s *Store) Transcript() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Pending reports whether a request is outstanding.
func (s *Store) Pending() bool {
	return s.Phase().Pending()
}

// Phase returns the current phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// LastAnswer returns the most recent assistant turn that is not a failure.
func (s *Store) LastAnswer() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.turns) - 1; i >= 0; i-- {
		if t := s.turns[i]; t.Speaker == Assistant && !t.Failed() {
			return t, true
		}
	}
	return Turn{}, false
}

// Subscribe registers fn for future events and returns a function that
// removes it. Observers must not call Append, Await or Settle.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.observers = slices.DeleteFunc(s.observers, func(sub subscription) bool {
			return sub.id == id
		})
		s.mu.Unlock()
	}
}

type subscription struct {
	id int
	fn Observer
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	subs := slices.Clone(s.observers)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
