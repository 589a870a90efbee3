// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/pnuchat/internal/answer"
	"github.com/jeranaias/pnuchat/internal/transcript"
	"github.com/jeranaias/pnuchat/internal/util"
)

// ErrBusy is returned by Submit under PolicyReject while a request is outstanding.
var ErrBusy = errors.New("a request is already outstanding")

// =============================================================================
// POLICY
// =============================================================================

// Policy decides what Submit does while a request is outstanding.
type Policy int

const (
	PolicyReject Policy = iota
	PolicyQueue
)

// ParsePolicy maps "reject" or "queue" onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "queue":
		return PolicyQueue, nil
	}
	return PolicyReject, errors.New("unknown busy policy: " + s)
}

func (p Policy) String() string {
	if p == PolicyQueue {
		return "queue"
	}
	return "reject"
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultFailureText is shown in place of an answer when a request fails.
const DefaultFailureText = "서버 연결 실패"

// Config holds dispatcher options. The zero value is usable.
type Config struct {
	Policy Policy

	// FailureText replaces the answer on any failed call.
	FailureText string

	// Timeout bounds each call. 0 means none.
	Timeout time.Duration

	// OnAccept runs after the user turn of an accepted submission is
	// appended. The session uses it to clear the draft.
	OnAccept func()

	Logger zerolog.Logger
}

// Stats summarizes resolved requests.
type Stats struct {
	Exchanges   int
	Failures    int
	Queued      int
	LastLatency time.Duration
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher is the only writer of its Store.
type Dispatcher struct {
	store    *transcript.Store
	answerer answer.Answerer
	config   Config
	log      zerolog.Logger

	mu    sync.Mutex
	queue []*Call
	stats Stats
}

// New creates a dispatcher writing to store and asking answerer.
func New(store *transcript.Store, answerer answer.Answerer, config Config) *Dispatcher {
	if config.FailureText == "" {
		config.FailureText = DefaultFailureText
	}
	return &Dispatcher{
		store:    store,
		answerer: answerer,
		config:   config,
		log:      config.Logger.With().Str("component", "dispatch").Logger(),
	}
}

// Store returns the store this dispatcher writes to.
func (d *Dispatcher) Store() *transcript.Store {
	return d.store
}

// Submit validates raw and, when accepted, appends a user turn with the
// text exactly as given. The query sent to the answerer is raw trimmed and
// NFC-normalized, so decomposed Hangul from some input methods reaches the
// service as precomposed syllables.
//
// It returns (nil, nil) when raw is blank, and also when the submission was
// queued behind the outstanding request; the queued call is handed out
// later by Resolve. A non-nil Call must be Run and its Outcome passed to
// Resolve. Under PolicyReject a submission while pending returns ErrBusy
// and changes nothing.
func (d *Dispatcher) Submit(raw string) (*Call, error) {
	query := norm.NFC.String(strings.TrimSpace(raw))
	if query == "" {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	call := &Call{
		ID:       uuid.New(),
		Query:    query,
		answerer: d.answerer,
		timeout:  d.config.Timeout,
	}

	if d.store.Pending() {
		if d.config.Policy == PolicyReject {
			d.log.Debug().Str("query", util.TruncateRunes(util.OneLine(query), 80)).Msg("submit rejected: busy")
			return nil, ErrBusy
		}
		d.store.Append(transcript.NewUserTurn(raw))
		d.accepted()
		d.queue = append(d.queue, call)
		d.stats.Queued = len(d.queue)
		d.log.Info().Str("request_id", call.ID.String()).Int("queued", len(d.queue)).Msg("submit queued")
		return nil, nil
	}

	d.store.Append(transcript.NewUserTurn(raw))
	d.accepted()
	d.store.Await(call.ID)
	d.log.Info().Str("request_id", call.ID.String()).Int("query_len", len([]rune(query))).Msg("submit accepted")
	return call, nil
}

func (d *Dispatcher) accepted() {
	if d.config.OnAccept != nil {
		d.config.OnAccept()
	}
}

// Resolution is what Resolve did with an Outcome.
type Resolution struct {
	// Applied is false when the outcome was stale and discarded.
	Applied bool
	// Turn is the assistant turn appended, when Applied.
	Turn transcript.Turn
	// Next is the queued call that is now outstanding, if any.
	Next *Call
}

// Resolve appends the assistant turn for out if out answers the awaited
// request, then either settles the store or starts the next queued call.
func (d *Dispatcher) Resolve(out Outcome) Resolution {
	d.mu.Lock()
	defer d.mu.Unlock()

	phase := d.store.Phase()
	if !phase.Pending() || phase.RequestID != out.RequestID {
		d.log.Warn().
			Str("request_id", out.RequestID.String()).
			Str("phase", phase.String()).
			Msg("discarding stale outcome")
		return Resolution{}
	}

	var turn transcript.Turn
	if out.Err != nil {
		kind := answer.KindOf(out.Err)
		turn = transcript.NewFailureTurn(d.config.FailureText, kind.String())
		d.stats.Failures++
		d.log.Warn().
			Err(out.Err).
			Str("request_id", out.RequestID.String()).
			Str("kind", kind.String()).
			Dur("latency", out.Latency).
			Msg("answer failed")
	} else {
		turn = transcript.NewAssistantTurn(out.Answer)
		d.log.Info().
			Str("request_id", out.RequestID.String()).
			Dur("latency", out.Latency).
			Int("answer_len", len([]rune(out.Answer))).
			Msg("answer received")
	}
	d.stats.Exchanges++
	d.stats.LastLatency = out.Latency

	d.store.Append(turn)
	d.log.Debug().Int("turns", d.store.Len()).Msg("transcript updated")

	if len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.stats.Queued = len(d.queue)
		d.store.Await(next.ID)
		d.log.Debug().Str("request_id", next.ID.String()).Msg("dequeued")
		return Resolution{Applied: true, Turn: turn, Next: next}
	}

	d.store.Settle()
	return Resolution{Applied: true, Turn: turn}
}

// Dispatch submits raw and runs the call, and any calls queued behind it,
// to completion. It returns the assistant turn answering raw, or nil when
// raw was blank or was queued behind a request owned by another caller.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) (*transcript.Turn, error) {
	call, err := d.Submit(raw)
	if err != nil || call == nil {
		return nil, err
	}

	var mine *transcript.Turn
	for call != nil {
		res := d.Resolve(call.Run(ctx))
		if res.Applied && mine == nil {
			turn := res.Turn
			mine = &turn
		}
		call = res.Next
	}
	return mine, nil
}

// Stats returns counters for resolved requests.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// =============================================================================
// CALL
// =============================================================================

// Call is one accepted query waiting to be sent.
type Call struct {
	ID    uuid.UUID
	Query string

	answerer answer.Answerer
	timeout  time.Duration
}

// Outcome is the result of running a Call.
type Outcome struct {
	RequestID uuid.UUID
	Answer    string
	Err       error
	Latency   time.Duration
}

// Run asks the answerer exactly once and blocks until it returns.
func (c *Call) Run(ctx context.Context) Outcome {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.answerer.Answer(ctx, c.Query)
	return Outcome{
		RequestID: c.ID,
		Answer:    text,
		Err:       err,
		Latency:   time.Since(start),
	}
}
