package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/speakcoach/gateway/internal/credpool"
)

const appTitle = "English Speaking Skills Improvement App"

// Client issues chat-completion requests against the external LLM endpoint
// using whichever credential the pool cursor points at. It never retries and
// never interprets status codes — that is the failover loop's job.
type Client struct {
	url    string
	model  string
	pool   *credpool.Pool
	client *http.Client
}

// NewClient creates a completion client for the given endpoint and model.
func NewClient(url, model string, pool *credpool.Pool, poolSize int, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		model:  model,
		pool:   pool,
		client: NewPooledHTTPClient(poolSize, timeout),
	}
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// Complete sends exactly one POST with the pool's current credential and
// surfaces the raw HTTP response. Network-level errors propagate unchanged.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, format string) (*http.Response, error) {
	reqBody := completionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if format != "" {
		reqBody.ResponseFormat = &responseFormat{Type: format}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.pool.Current())
	req.Header.Set("X-Title", appTitle)

	return c.client.Do(req)
}
