package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/speakcoach/gateway/internal/scenario"
	"github.com/speakcoach/gateway/internal/tutor"
)

type fakeAnalyzer struct{}

func (fakeAnalyzer) Analyze(ctx context.Context, text, prior string) tutor.Analysis {
	return tutor.Analysis{
		OriginalText:  text,
		CorrectedText: text,
		Mistakes:      []string{},
		Suggestions:   []string{},
	}
}

type fakeResponder struct{}

func (fakeResponder) Respond(ctx context.Context, text string, sc scenario.Scenario, history []tutor.HistoryMessage) (tutor.Reply, error) {
	return tutor.Reply{Success: true, Response: "And then what happened?"}, nil
}

func dialTestHandler(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func waitForEvent(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		ev := readEvent(t, conn)
		if ev["type"] == typ {
			return ev
		}
	}
	t.Fatalf("never received %s event", typ)
	return nil
}

func newTestHandler(turnLimit int) *Handler {
	return NewHandler(HandlerConfig{
		Analyzer:     fakeAnalyzer{},
		Responder:    fakeResponder{},
		Catalog:      mustCatalog(),
		TurnLimit:    turnLimit,
		ClosingDelay: time.Millisecond,
		EvalDelay:    time.Millisecond,
	})
}

func mustCatalog() *scenario.Catalog {
	c, err := scenario.Load()
	if err != nil {
		panic(err)
	}
	return c
}

func TestHandler_ConversationFlow(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(2))

	if err := conn.WriteJSON(sessionMetadata{ScenarioID: "restaurant"}); err != nil {
		t.Fatalf("metadata: %v", err)
	}

	started := waitForEvent(t, conn, "session_started")
	if sp, _ := started["speak"].(string); sp == "" {
		t.Error("opening question must be spoken")
	}

	if err := conn.WriteJSON(command{Type: "user_text", Text: "I would like a table for two."}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForEvent(t, conn, "feedback")
	waitForEvent(t, conn, "agent_message")

	if err := conn.WriteJSON(command{Type: "user_text", Text: "Thank you very much."}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForEvent(t, conn, "closing")
	ev := waitForEvent(t, conn, "evaluation")
	if ev["evaluation"] == nil {
		t.Error("evaluation event without payload")
	}
}

func TestHandler_FragmentsAccumulate(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(10))

	conn.WriteJSON(sessionMetadata{ScenarioID: "doctor"})
	waitForEvent(t, conn, "session_started")

	conn.WriteJSON(command{Type: "fragment", Text: "I have a", IsFinal: true})
	conn.WriteJSON(command{Type: "fragment", Text: "interim noise", IsFinal: false})
	conn.WriteJSON(command{Type: "fragment", Text: "headache.", IsFinal: true})
	conn.WriteJSON(command{Type: "submit"})

	fb := waitForEvent(t, conn, "feedback")
	msg, ok := fb["message"].(map[string]any)
	if !ok {
		t.Fatalf("feedback without message: %v", fb)
	}
	if msg["content"] != "I have a headache." {
		t.Errorf("interim fragments must be dropped, got %q", msg["content"])
	}
}

func TestHandler_UnknownScenario(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(10))

	conn.WriteJSON(sessionMetadata{ScenarioID: "moon-base"})
	ev := readEvent(t, conn)
	if ev["type"] != "error" {
		t.Fatalf("expected error event, got %v", ev)
	}
}

func TestHandler_LeaveFlow(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(10))

	conn.WriteJSON(sessionMetadata{ScenarioID: "hotel"})
	waitForEvent(t, conn, "session_started")

	conn.WriteJSON(command{Type: "user_text", Text: "I booked a room yesterday."})
	waitForEvent(t, conn, "agent_message")

	conn.WriteJSON(command{Type: "leave"})
	waitForEvent(t, conn, "leave_prompt")

	conn.WriteJSON(command{Type: "confirm_leave"})
	ev := waitForEvent(t, conn, "evaluation")
	if ev["evaluation"] == nil {
		t.Error("early leave must still deliver an evaluation")
	}
}

func TestHandler_PracticeMode(t *testing.T) {
	conn := dialTestHandler(t, newTestHandler(10))

	conn.WriteJSON(sessionMetadata{Mode: ModePractice})
	conn.WriteJSON(command{Type: "user_text", Text: "Yesterday I go to the park."})
	waitForEvent(t, conn, "practice_feedback")

	conn.WriteJSON(command{Type: "end"})
	ev := waitForEvent(t, conn, "practice_summary")
	if ev["stats"] == nil {
		t.Error("summary must carry stats")
	}
}

func TestHandler_AtCapacity(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Analyzer:      fakeAnalyzer{},
		Responder:     fakeResponder{},
		Catalog:       mustCatalog(),
		TurnLimit:     10,
		MaxConcurrent: 1,
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("first dial: %v", err)
	}
	defer first.Close()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second dial should be refused at capacity")
	}
	if resp == nil || resp.StatusCode != 503 {
		t.Errorf("expected 503, got %+v", resp)
	}
}
