package trace

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type traceMsg struct {
	kind string // "turn_create", "turn_update", "span", "session_end"
	// turn fields
	turnID     string
	seq        int
	durationMs float64
	status     string
	// session fields
	turnCount int
	// span fields
	span Span
}

// Tracer writes trace data asynchronously via a buffered channel.
// All methods are nil-safe (no-op on nil receiver).
type Tracer struct {
	store     *Store
	sessionID string
	ch        chan traceMsg
	done      chan struct{}
}

// NewTracer creates a tracer bound to a session. Must call Close when done.
func NewTracer(store *Store, sessionID string) *Tracer {
	t := &Tracer{
		store:     store,
		sessionID: sessionID,
		ch:        make(chan traceMsg, 64),
		done:      make(chan struct{}),
	}
	go t.drain()
	return t
}

func (t *Tracer) drain() {
	defer close(t.done)
	for msg := range t.ch {
		t.handle(msg)
	}
}

func (t *Tracer) handle(m traceMsg) {
	handlers := map[string]func() error{
		"turn_create": func() error { return t.store.CreateTurn(m.turnID, t.sessionID, m.seq) },
		"turn_update": func() error { return t.store.UpdateTurn(m.turnID, m.durationMs, m.status) },
		"span":        func() error { return t.store.CreateSpan(m.span) },
		"session_end": func() error { return t.store.EndSession(t.sessionID, m.turnCount) },
	}
	fn, ok := handlers[m.kind]
	if !ok {
		return
	}
	if err := fn(); err != nil {
		slog.Warn("trace write failed", "kind", m.kind, "error", err)
	}
}

// StartTurn begins a new turn record and returns its ID.
func (t *Tracer) StartTurn(seq int) string {
	if t == nil {
		return ""
	}
	id := uuid.NewString()
	t.ch <- traceMsg{kind: "turn_create", turnID: id, seq: seq}
	return id
}

// EndTurn finalizes a turn.
func (t *Tracer) EndTurn(turnID string, durationMs float64, status string) {
	if t == nil {
		return
	}
	t.ch <- traceMsg{kind: "turn_update", turnID: turnID, durationMs: durationMs, status: status}
}

// RecordSpan records a completed stage. Only timing and status: no
// utterance content passes through the tracer.
func (t *Tracer) RecordSpan(turnID, name string, startedAt time.Time, durationMs float64, status, errMsg string) {
	if t == nil {
		return
	}
	t.ch <- traceMsg{
		kind: "span",
		span: Span{
			ID:         uuid.NewString(),
			TurnID:     turnID,
			Name:       name,
			StartedAt:  startedAt,
			DurationMs: durationMs,
			Status:     status,
			Error:      errMsg,
		},
	}
}

// EndSession records the session's end time and final turn count.
func (t *Tracer) EndSession(turnCount int) {
	if t == nil {
		return
	}
	t.ch <- traceMsg{kind: "session_end", turnCount: turnCount}
}

// Close drains pending writes and shuts down the background goroutine.
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	close(t.ch)
	<-t.done
}
