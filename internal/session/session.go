// Package session holds the per-conversation state machine: transcript,
// turn counting, the single-flight submission guard, and end-of-session
// evaluation. One Session per connected learner.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/speakcoach/gateway/internal/metrics"
	"github.com/speakcoach/gateway/internal/prompts"
	"github.com/speakcoach/gateway/internal/scenario"
	"github.com/speakcoach/gateway/internal/trace"
	"github.com/speakcoach/gateway/internal/tutor"
	"github.com/speakcoach/gateway/internal/vocab"
)

// FallbackRephrase replaces an agent reply that came back degraded.
const FallbackRephrase = "I'm sorry, I didn't quite understand. Could you rephrase that?"

// FallbackTrouble replaces an agent reply that failed outright.
const FallbackTrouble = "I'm having trouble responding right now. Let's continue our conversation. What would you like to talk about?"

// Analyzer produces feedback for one user utterance.
type Analyzer interface {
	Analyze(ctx context.Context, text, priorQuestion string) tutor.Analysis
}

// Responder produces the next in-character agent reply.
type Responder interface {
	Respond(ctx context.Context, userText string, sc scenario.Scenario, history []tutor.HistoryMessage) (tutor.Reply, error)
}

// EventType labels a session event pushed to the client.
type EventType string

const (
	// EventAgentMessage is the agent's conversational reply to a turn.
	EventAgentMessage EventType = "agent_message"
	// EventFeedback carries analysis feedback for the message at Index.
	EventFeedback EventType = "feedback"
	// EventClosing is the scripted wrap-up line after the turn limit.
	EventClosing EventType = "closing"
	// EventEvaluation carries the final report card.
	EventEvaluation EventType = "evaluation"
)

// Event is one session occurrence for the client. Speak carries text the
// client should synthesize aloud.
type Event struct {
	Type       EventType   `json:"type"`
	Index      int         `json:"index,omitempty"`
	Message    *Message    `json:"message,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Speak      string      `json:"speak,omitempty"`
}

// EventCallback receives session events. Implementations must be safe to
// call from multiple goroutines; the websocket layer serializes writes.
type EventCallback func(Event)

// Config wires a session's collaborators and tunables.
type Config struct {
	Analyzer  Analyzer
	Responder Responder
	Scenario  scenario.Scenario

	// TurnLimit is the number of user turns before the session wraps up.
	TurnLimit int
	// ClosingDelay is the pause before the scripted closing line.
	ClosingDelay time.Duration
	// EvalDelay is the pause between the closing line and the evaluation.
	EvalDelay time.Duration

	// Tracer is optional; nil disables tracing.
	Tracer *trace.Tracer
}

// Session is one learner's conversation. All state is behind mu; the
// submission pipeline holds the lock only around transcript mutations,
// never across model calls.
type Session struct {
	cfg Config

	mu         sync.Mutex
	transcript []Message
	turnCount  int
	processing bool
	complete   bool
	evaluated  bool
	startedAt  time.Time
}

// State is a point-in-time snapshot of session flags.
type State struct {
	TurnCount  int
	Processing bool
	Complete   bool
	Evaluated  bool
}

// New creates a session seeded with the scenario's opening question.
func New(cfg Config) *Session {
	metrics.SessionsTotal.Inc()
	return &Session{
		cfg: cfg,
		transcript: []Message{
			{Role: RoleAgent, Content: cfg.Scenario.InitialQuestion},
		},
		startedAt: time.Now(),
	}
}

// State returns the current flags.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		TurnCount:  s.turnCount,
		Processing: s.processing,
		Complete:   s.complete,
		Evaluated:  s.evaluated,
	}
}

// Transcript returns a copy of the transcript.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Submit runs one user turn: the utterance enters the transcript
// immediately, then analysis and the agent reply run concurrently. The
// return value reports whether the turn was accepted; a turn already in
// flight, a completed session, or blank text rejects the submission
// outright rather than queueing it.
func (s *Session) Submit(ctx context.Context, text string, onEvent EventCallback) bool {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.processing || s.complete {
		s.mu.Unlock()
		metrics.TurnsRejected.Inc()
		return false
	}
	s.processing = true
	s.turnCount++
	seq := s.turnCount

	vb := vocab.Analyze(text)
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: text, Vocabulary: &vb})
	// Handle to the pending user message; feedback attaches here once
	// analysis lands, even if the agent reply arrives first.
	handle := len(s.transcript) - 1

	history := make([]tutor.HistoryMessage, 0, handle)
	prior := ""
	for _, m := range s.transcript[:handle] {
		history = append(history, tutor.HistoryMessage{FromAgent: m.Role == RoleAgent, Content: m.Content})
		if m.Role == RoleAgent {
			prior = m.Content
		}
	}
	s.mu.Unlock()

	metrics.TurnsTotal.Inc()
	turnID := s.cfg.Tracer.StartTurn(seq)
	turnStart := time.Now()

	var (
		wg       sync.WaitGroup
		analysis tutor.Analysis
		reply    tutor.Reply
		replyErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		analysis = s.cfg.Analyzer.Analyze(ctx, text, prior)
		status := "ok"
		if analysis.APIError {
			status = string(analysis.ErrorType)
		}
		s.cfg.Tracer.RecordSpan(turnID, "analysis", start, float64(time.Since(start).Milliseconds()), status, "")
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		reply, replyErr = s.cfg.Responder.Respond(ctx, text, s.cfg.Scenario, history)
		status, errMsg := "ok", ""
		if replyErr != nil {
			status, errMsg = "error", replyErr.Error()
		} else if !reply.Success {
			status = "degraded"
		}
		s.cfg.Tracer.RecordSpan(turnID, "respond", start, float64(time.Since(start).Milliseconds()), status, errMsg)
	}()
	wg.Wait()

	s.mu.Lock()
	s.transcript[handle].Feedback = &Feedback{
		CorrectedText: analysis.CorrectedText,
		Mistakes:      analysis.Mistakes,
		Suggestions:   analysis.Suggestions,
		APIError:      analysis.APIError,
	}
	feedbackMsg := s.transcript[handle]

	content := reply.Response
	switch {
	case replyErr != nil:
		slog.Error("agent reply failed", "scenario", s.cfg.Scenario.ID, "turn", seq, "error", replyErr)
		content = FallbackTrouble
	case !reply.Success:
		content = FallbackRephrase
	}
	s.transcript = append(s.transcript, Message{Role: RoleAgent, Content: content})
	agentMsg := s.transcript[len(s.transcript)-1]

	done := s.turnCount >= s.cfg.TurnLimit
	if done {
		s.complete = true
	}
	s.processing = false
	s.mu.Unlock()

	metrics.TurnDuration.Observe(time.Since(turnStart).Seconds())
	status := "ok"
	if replyErr != nil || analysis.APIError {
		status = "degraded"
	}
	s.cfg.Tracer.EndTurn(turnID, float64(time.Since(turnStart).Milliseconds()), status)

	onEvent(Event{Type: EventFeedback, Index: handle, Message: &feedbackMsg})
	onEvent(Event{Type: EventAgentMessage, Message: &agentMsg, Speak: agentMsg.Content})

	if done {
		go s.wrapUp(onEvent)
	}
	return true
}

// wrapUp delivers the scripted closing line and then the evaluation, each
// after its configured pause so the final reply is heard first.
func (s *Session) wrapUp(onEvent EventCallback) {
	time.Sleep(s.cfg.ClosingDelay)

	s.mu.Lock()
	s.transcript = append(s.transcript, Message{Role: RoleAgent, Content: prompts.ClosingLine})
	closing := s.transcript[len(s.transcript)-1]
	s.mu.Unlock()
	onEvent(Event{Type: EventClosing, Message: &closing, Speak: closing.Content})

	time.Sleep(s.cfg.EvalDelay)
	s.finish(onEvent)
}

func (s *Session) finish(onEvent EventCallback) {
	s.mu.Lock()
	if s.evaluated {
		s.mu.Unlock()
		return
	}
	s.evaluated = true
	s.complete = true
	ev := Score(s.transcript, s.startedAt)
	turns := s.turnCount
	s.mu.Unlock()

	s.cfg.Tracer.EndSession(turns)
	onEvent(Event{Type: EventEvaluation, Evaluation: &ev})
}

// RequestLeave reports whether leaving now needs confirmation: a session
// with progress that has not been evaluated yet would lose its feedback.
func (s *Session) RequestLeave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount >= 1 && !s.evaluated
}

// ConfirmLeave ends the session early and delivers the evaluation for
// whatever progress exists.
func (s *Session) ConfirmLeave(onEvent EventCallback) {
	s.mu.Lock()
	s.complete = true
	s.mu.Unlock()
	s.finish(onEvent)
}

// TryAgain resets the session to a fresh run of the same scenario.
func (s *Session) TryAgain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = []Message{
		{Role: RoleAgent, Content: s.cfg.Scenario.InitialQuestion},
	}
	s.turnCount = 0
	s.processing = false
	s.complete = false
	s.evaluated = false
	s.startedAt = time.Now()
}

// Evaluate scores the transcript as it stands, without ending the session.
func (s *Session) Evaluate() Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Score(s.transcript, s.startedAt)
}
