package tutor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/speakcoach/gateway/internal/metrics"
	"github.com/speakcoach/gateway/internal/prompts"
	"github.com/speakcoach/gateway/internal/scenario"
)

// FallbackApology is the responder's own degraded reply. The orchestrator
// keeps a separate fallback for failures at its level.
const FallbackApology = "I'm sorry, I couldn't process your message. Let's try again."

// Responder generates the next in-character agent utterance for a scenario.
type Responder struct {
	client *Client
}

// NewResponder creates a responder on top of the shared completion client.
func NewResponder(client *Client) *Responder {
	return &Responder{client: client}
}

// Respond drives the failover loop for one role-play reply. History is the
// transcript as it stood before userText; agent turns map to the assistant
// role. Total failure degrades to the fallback apology with Success false —
// the error return is reserved for context cancellation, which the caller
// handles with its own fallback.
func (r *Responder) Respond(ctx context.Context, userText string, sc scenario.Scenario, history []HistoryMessage) (Reply, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("respond").Observe(time.Since(start).Seconds())
	}()

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: prompts.RolePlay(sc)})
	for _, h := range history {
		role := "user"
		if h.FromAgent {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: h.Content})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: userText})

	content, err := r.client.exchange(ctx, messages, "")
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		slog.Error("chat response failed", "scenario", sc.ID, "error", err)
		return Reply{Success: false, Response: FallbackApology}, nil
	}

	return Reply{Success: true, Response: strings.TrimSpace(content)}, nil
}
