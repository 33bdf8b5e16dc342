package tutor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/speakcoach/gateway/internal/metrics"
)

const maxErrorBody = 4096

var (
	// ErrInsufficientCredits means the provider reported an empty balance on
	// the last credential of the pass. No rotation can fix a billing failure.
	ErrInsufficientCredits = errors.New("completion provider: insufficient credits")

	// ErrExhausted means one full pass over the credential pool failed.
	ErrExhausted = errors.New("completion provider: all credentials failed")
)

// exchange drives one bounded pass over the credential pool and returns the
// assistant message content on success.
//
// Quota-style failures (429, 402, or an error message mentioning a limit)
// and malformed bodies rotate to the next credential. A transport error or
// any other HTTP status aborts the whole pass immediately: those failures
// are assumed systemic, so retrying the remaining credentials against them
// is wasted work.
func (c *Client) exchange(ctx context.Context, messages []ChatMessage, format string) (string, error) {
	n := c.pool.Size()

	for attempt := 0; attempt < n; attempt++ {
		slog.Debug("completion attempt", "credential", c.pool.Index()+1, "of", n)

		resp, err := c.Complete(ctx, messages, format)
		if err != nil {
			metrics.CompletionRequests.WithLabelValues("transport_error").Inc()
			return "", fmt.Errorf("completion request: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			metrics.CompletionRequests.WithLabelValues("transport_error").Inc()
			return "", fmt.Errorf("read completion body: %w", readErr)
		}

		if resp.StatusCode != http.StatusOK {
			errMsg := gjson.GetBytes(body, "error.message").String()
			if !quotaExhausted(resp.StatusCode, errMsg) {
				metrics.CompletionRequests.WithLabelValues("status_error").Inc()
				return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, truncate(errMsg, maxErrorBody))
			}

			metrics.CompletionRequests.WithLabelValues("quota").Inc()
			slog.Warn("credential limit reached, rotating",
				"credential", c.pool.Index()+1, "of", n, "status", resp.StatusCode)

			if resp.StatusCode == http.StatusPaymentRequired && attempt == n-1 {
				return "", ErrInsufficientCredits
			}

			metrics.CredentialRotations.Inc()
			c.pool.Advance()
			continue
		}

		content := gjson.GetBytes(body, "choices.0.message.content")
		if !content.Exists() || content.String() == "" {
			// Missing choices/message/content is treated as transient.
			metrics.CompletionRequests.WithLabelValues("malformed").Inc()
			slog.Warn("malformed completion body, rotating",
				"credential", c.pool.Index()+1, "of", n)
			metrics.CredentialRotations.Inc()
			c.pool.Advance()
			continue
		}

		metrics.CompletionRequests.WithLabelValues("ok").Inc()
		return content.String(), nil
	}

	return "", ErrExhausted
}

var quotaMarkers = []string{"limit", "quota", "exceeded"}

// quotaExhausted reports whether the failure is recoverable by rotating to
// another credential.
func quotaExhausted(status int, errMsg string) bool {
	if status == http.StatusTooManyRequests || status == http.StatusPaymentRequired {
		return true
	}
	lower := strings.ToLower(errMsg)
	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
