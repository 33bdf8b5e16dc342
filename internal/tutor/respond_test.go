package tutor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/speakcoach/gateway/internal/scenario"
)

func testScenario() scenario.Scenario {
	return scenario.Scenario{
		ID:              "restaurant",
		Title:           "At the Restaurant",
		AgentName:       "Alex the waiter",
		UserRole:        "a customer",
		InitialQuestion: "Welcome! What can I get you today?",
	}
}

func TestRespond_HistoryRoleMapping(t *testing.T) {
	var mu sync.Mutex
	var captured completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		json.Unmarshal(body, &captured)
		mu.Unlock()
		w.Write([]byte(okBody("Right away!")))
	}))
	defer srv.Close()

	r := NewResponder(newTestClient(t, srv.URL, "key-a"))
	history := []HistoryMessage{
		{FromAgent: true, Content: "Welcome! What can I get you today?"},
		{FromAgent: false, Content: "I would like a coffee."},
		{FromAgent: true, Content: "Anything else?"},
	}
	reply, err := r.Respond(context.Background(), "A croissant, please.", testScenario(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Success || reply.Response != "Right away!" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	mu.Lock()
	defer mu.Unlock()
	// system + 3 history + current user message
	if len(captured.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(captured.Messages))
	}
	wantRoles := []string{"system", "assistant", "user", "assistant", "user"}
	for i, want := range wantRoles {
		if captured.Messages[i].Role != want {
			t.Errorf("message %d: expected role %s, got %s", i, want, captured.Messages[i].Role)
		}
	}
	if captured.Messages[4].Content != "A croissant, please." {
		t.Errorf("last message must be the current utterance, got %q", captured.Messages[4].Content)
	}
	if captured.ResponseFormat != nil {
		t.Error("role-play replies must not force a response format")
	}
}

func TestRespond_DegradesToApology(t *testing.T) {
	fake := &fakeProvider{responses: []providerResponse{
		{429, `{"error":{"message":"limit"}}`},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	r := NewResponder(newTestClient(t, srv.URL, "key-a"))
	reply, err := r.Respond(context.Background(), "Hello?", testScenario(), nil)
	if err != nil {
		t.Fatalf("degraded reply must not be an error: %v", err)
	}
	if reply.Success {
		t.Fatal("expected Success=false")
	}
	if reply.Response != FallbackApology {
		t.Errorf("expected fallback apology, got %q", reply.Response)
	}
}

func TestRespond_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResponder(newTestClient(t, srv.URL, "key-a"))
	_, err := r.Respond(ctx, "Hello?", testScenario(), nil)
	if err == nil {
		t.Fatal("cancellation must surface as an error to the caller")
	}
}

func TestRespond_TrimsWhitespace(t *testing.T) {
	fake := &fakeProvider{responses: []providerResponse{{200, okBody("  Of course!\\n")}}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	r := NewResponder(newTestClient(t, srv.URL, "key-a"))
	reply, err := r.Respond(context.Background(), "May I?", testScenario(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Response != "Of course!" {
		t.Errorf("expected trimmed reply, got %q", reply.Response)
	}
}
