// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/pnuchat/internal/answer"
	"github.com/jeranaias/pnuchat/internal/dispatch"
	"github.com/jeranaias/pnuchat/internal/transcript"
)

// Config holds session options.
type Config struct {
	Policy      dispatch.Policy
	FailureText string
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Session tracks one conversation.
type Session struct {
	id        uuid.UUID
	startedAt time.Time

	store *transcript.Store
	disp  *dispatch.Dispatcher

	mu    sync.Mutex
	draft string
}

// New creates a session that asks answerer.
func New(answerer answer.Answerer, cfg Config) *Session {
	s := &Session{
		id:        uuid.New(),
		startedAt: time.Now(),
		store:     transcript.NewStore(),
	}
	logger := cfg.Logger.With().Str("session_id", s.id.String()).Logger()
	s.disp = dispatch.New(s.store, answerer, dispatch.Config{
		Policy:      cfg.Policy,
		FailureText: cfg.FailureText,
		Timeout:     cfg.Timeout,
		OnAccept:    func() { s.SetDraft("") },
		Logger:      logger,
	})
	logger.Info().Str("policy", cfg.Policy.String()).Msg("session started")
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// =============================================================================
// PRESENTATION SURFACE
// =============================================================================

// Transcript returns a snapshot of the turns in display order.
func (s *Session) Transcript() []transcript.Turn {
	return s.store.Transcript()
}

// Pending reports whether a request is outstanding.
func (s *Session) Pending() bool {
	return s.store.Pending()
}

// Submit hands raw to the dispatcher. See dispatch.Dispatcher.Submit.
func (s *Session) Submit(raw string) (*dispatch.Call, error) {
	return s.disp.Submit(raw)
}

// SetDraft replaces the draft.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the draft.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// =============================================================================
// COMPLETION
// =============================================================================

// Resolve merges the outcome of a call run by the front end.
func (s *Session) Resolve(out dispatch.Outcome) dispatch.Resolution {
	return s.disp.Resolve(out)
}

// Ask submits raw and waits for its answer turn. It returns nil for blank
// input, and under the queue policy for a question queued behind a request
// started elsewhere; that question is answered by whoever resolves the
// request ahead of it.
func (s *Session) Ask(ctx context.Context, raw string) (*transcript.Turn, error) {
	return s.disp.Dispatch(ctx, raw)
}

// Stats returns request counters for the status bar.
func (s *Session) Stats() dispatch.Stats {
	return s.disp.Stats()
}

// LastAnswer returns the latest successful answer.
func (s *Session) LastAnswer() (transcript.Turn, bool) {
	return s.store.LastAnswer()
}

// Subscribe registers an observer on the transcript. See transcript.Store.Subscribe.
func (s *Session) Subscribe(fn transcript.Observer) func() {
	return s.store.Subscribe(fn)
}
