// Package ws is the WebSocket transport for practice sessions. One
// connection is one session: the first text frame selects a scenario and
// mode, every later frame is a command, and events stream back as JSON.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/speakcoach/gateway/internal/metrics"
	"github.com/speakcoach/gateway/internal/scenario"
	"github.com/speakcoach/gateway/internal/session"
	"github.com/speakcoach/gateway/internal/speech"
	"github.com/speakcoach/gateway/internal/trace"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ModeConversation is scenario role-play; ModePractice is free analysis
// with no conversation partner.
const (
	ModeConversation = "conversation"
	ModePractice     = "practice"
)

// HandlerConfig holds the shared collaborators for all sessions.
type HandlerConfig struct {
	Analyzer  session.Analyzer
	Responder session.Responder
	Catalog   *scenario.Catalog

	TurnLimit    int
	ClosingDelay time.Duration
	EvalDelay    time.Duration

	// TraceStore is optional; nil disables tracing.
	TraceStore    *trace.Store
	MaxConcurrent int
}

// Handler manages WebSocket practice sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a WebSocket handler with a concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// sessionMetadata is the first text frame sent by the client.
type sessionMetadata struct {
	ScenarioID string `json:"scenario_id"`
	Mode       string `json:"mode"`
}

// command is every subsequent text frame.
type command struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	IsFinal bool   `json:"is_final,omitempty"`
	Code    string `json:"code,omitempty"`
}

// serverEvent is the envelope for handler-level events; session events are
// serialized as-is.
type serverEvent struct {
	Type     string             `json:"type"`
	Scenario *scenario.Scenario `json:"scenario,omitempty"`
	Message  *session.Message   `json:"message,omitempty"`
	Speak    string             `json:"speak,omitempty"`
	Analysis any                `json:"analysis,omitempty"`
	Stats    *session.Stats     `json:"stats,omitempty"`
	Score    int                `json:"score,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and runs the session.
// Returns 503 at max concurrent session capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	h.runSession(conn)
}

func (h *Handler) runSession(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := newSender(conn)

	meta, err := readMetadata(conn)
	if err != nil {
		slog.Error("read metadata", "error", err)
		return
	}
	mode := meta.Mode
	if mode == "" {
		mode = ModeConversation
	}

	sessionID := uuid.NewString()

	if mode == ModePractice {
		slog.Info("practice started", "session_id", sessionID)
		h.runPractice(ctx, conn, sessionID, send)
		slog.Info("practice ended", "session_id", sessionID)
		return
	}

	sc, ok := h.cfg.Catalog.Get(meta.ScenarioID)
	if !ok {
		send(serverEvent{Type: "error", Error: "unknown scenario: " + meta.ScenarioID})
		return
	}

	var tracer *trace.Tracer
	if h.cfg.TraceStore != nil {
		if err := h.cfg.TraceStore.CreateSession(sessionID, sc.ID, mode); err != nil {
			slog.Warn("trace session create failed", "error", err)
		} else {
			tracer = trace.NewTracer(h.cfg.TraceStore, sessionID)
			defer tracer.Close()
		}
	}

	sess := session.New(session.Config{
		Analyzer:     h.cfg.Analyzer,
		Responder:    h.cfg.Responder,
		Scenario:     sc,
		TurnLimit:    h.cfg.TurnLimit,
		ClosingDelay: h.cfg.ClosingDelay,
		EvalDelay:    h.cfg.EvalDelay,
		Tracer:       tracer,
	})

	slog.Info("session started", "session_id", sessionID, "scenario", sc.ID)
	opening := sess.Transcript()[0]
	send(serverEvent{Type: "session_started", Scenario: &sc, Message: &opening, Speak: opening.Content})

	onEvent := func(ev session.Event) { send(ev) }

	var buf speech.Buffer
	for {
		cmd, err := readCommand(conn)
		if err != nil {
			slog.Info("connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch cmd.Type {
		case "fragment":
			if cmd.IsFinal {
				buf.Append(cmd.Text)
			}
		case "submit":
			text := buf.String()
			buf.Reset()
			go submit(ctx, sess, text, onEvent, send)
		case "user_text":
			go submit(ctx, sess, cmd.Text, onEvent, send)
		case "speech_error":
			if code := speech.ErrorCode(cmd.Code); !code.Ignorable() {
				slog.Warn("speech error", "session_id", sessionID, "code", code)
				send(serverEvent{Type: "speech_error", Error: string(code)})
			}
		case "leave":
			if sess.RequestLeave() {
				send(serverEvent{Type: "leave_prompt"})
			} else {
				send(serverEvent{Type: "ended"})
				return
			}
		case "confirm_leave":
			sess.ConfirmLeave(onEvent)
		case "try_again":
			sess.TryAgain()
			opening := sess.Transcript()[0]
			send(serverEvent{Type: "session_started", Scenario: &sc, Message: &opening, Speak: opening.Content})
		case "end":
			send(serverEvent{Type: "ended"})
			return
		default:
			slog.Warn("unknown command", "session_id", sessionID, "type", cmd.Type)
		}
	}
}

// submit runs one turn off the read loop; the session's in-flight guard
// rejects overlapping submissions.
func submit(ctx context.Context, sess *session.Session, text string, onEvent session.EventCallback, send func(any)) {
	if !sess.Submit(ctx, text, onEvent) {
		send(serverEvent{Type: "rejected"})
	}
}

// runPractice analyzes utterances one at a time with no role-play partner.
func (h *Handler) runPractice(ctx context.Context, conn *websocket.Conn, sessionID string, send func(any)) {
	prac := session.NewPractice()
	var buf speech.Buffer

	analyze := func(text string) {
		if text == "" {
			return
		}
		a := h.cfg.Analyzer.Analyze(ctx, text, "")
		prac.Add(a)
		send(serverEvent{Type: "practice_feedback", Analysis: a})
	}

	for {
		cmd, err := readCommand(conn)
		if err != nil {
			slog.Info("connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch cmd.Type {
		case "fragment":
			if cmd.IsFinal {
				buf.Append(cmd.Text)
			}
		case "submit":
			text := buf.String()
			buf.Reset()
			go analyze(text)
		case "user_text":
			go analyze(cmd.Text)
		case "speech_error":
			if code := speech.ErrorCode(cmd.Code); !code.Ignorable() {
				send(serverEvent{Type: "speech_error", Error: string(code)})
			}
		case "try_again":
			prac.Reset()
		case "leave", "end":
			stats, score := prac.Finish()
			send(serverEvent{Type: "practice_summary", Stats: &stats, Score: score})
			return
		default:
			slog.Warn("unknown command", "session_id", sessionID, "type", cmd.Type)
		}
	}
}

// newSender serializes concurrent event writes onto the single connection.
func newSender(conn *websocket.Conn) func(any) {
	var mu sync.Mutex
	return func(ev any) {
		mu.Lock()
		defer mu.Unlock()

		jsonBytes, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err = conn.WriteMessage(websocket.TextMessage, jsonBytes); err != nil {
			slog.Error("write event", "error", err)
		}
	}
}

func readMetadata(conn *websocket.Conn) (*sessionMetadata, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var meta sessionMetadata
	if err = json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCommand(conn *websocket.Conn) (*command, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var cmd command
	if err = json.Unmarshal(data, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}
