package trace

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateSession("s1", "restaurant", "conversation"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.CreateTurn("t1", "s1", 1); err != nil {
		t.Fatalf("create turn: %v", err)
	}
	if err := s.UpdateTurn("t1", 1234.5, "ok"); err != nil {
		t.Fatalf("update turn: %v", err)
	}
	if err := s.CreateSpan(Span{ID: "sp1", TurnID: "t1", Name: "analysis", StartedAt: time.Now(), DurationMs: 800, Status: "ok"}); err != nil {
		t.Fatalf("create span: %v", err)
	}
	if err := s.EndSession("s1", 1); err != nil {
		t.Fatalf("end session: %v", err)
	}

	sess, turns, err := s.GetSession("s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.ScenarioID != "restaurant" || sess.Mode != "conversation" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.EndedAt == nil || sess.TurnCount != 1 {
		t.Errorf("session not finalized: %+v", sess)
	}
	if len(turns) != 1 || turns[0].Status != "ok" || turns[0].SpanCount != 1 {
		t.Errorf("unexpected turns: %+v", turns)
	}

	turn, spans, err := s.GetTurn("s1", "t1")
	if err != nil {
		t.Fatalf("get turn: %v", err)
	}
	if turn.DurationMs != 1234.5 {
		t.Errorf("unexpected duration: %v", turn.DurationMs)
	}
	if len(spans) != 1 || spans[0].Name != "analysis" {
		t.Errorf("unexpected spans: %+v", spans)
	}
}

func TestStore_ListSessions(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"s1", "s2", "s3"} {
		if err := s.CreateSession(id, "doctor", "conversation"); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	sessions, total, err := s.ListSessions(2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(sessions) != 2 {
		t.Errorf("expected page of 2, got %d", len(sessions))
	}
}

func TestTracer_WritesAsync(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateSession("s1", "airport", "conversation"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	tr := NewTracer(s, "s1")
	turnID := tr.StartTurn(1)
	if turnID == "" {
		t.Fatal("expected a turn id")
	}
	tr.RecordSpan(turnID, "respond", time.Now(), 500, "ok", "")
	tr.EndTurn(turnID, 900, "ok")
	tr.EndSession(1)
	tr.Close() // drains pending writes

	sess, turns, err := s.GetSession("s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.EndedAt == nil {
		t.Error("session not ended")
	}
	if len(turns) != 1 || turns[0].SpanCount != 1 {
		t.Errorf("unexpected turns: %+v", turns)
	}
}

func TestTracer_NilSafe(t *testing.T) {
	var tr *Tracer
	id := tr.StartTurn(1)
	if id != "" {
		t.Errorf("nil tracer must return empty id, got %q", id)
	}
	tr.RecordSpan("x", "analysis", time.Now(), 1, "ok", "")
	tr.EndTurn("x", 1, "ok")
	tr.EndSession(0)
	tr.Close()
}
