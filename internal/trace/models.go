package trace

import "time"

// Session represents one practice session. Only timings and coarse metadata
// are stored; utterance content never reaches the database.
type Session struct {
	ID         string     `json:"id"`
	ScenarioID string     `json:"scenario_id"`
	Mode       string     `json:"mode"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	TurnCount  int        `json:"turn_count,omitempty"`
}

// Turn represents one accepted user turn (submission through agent reply).
type Turn struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Seq        int       `json:"seq"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms,omitempty"`
	Status     string    `json:"status"`
	SpanCount  int       `json:"span_count,omitempty"`
}

// Span represents one stage within a turn (analysis or respond).
type Span struct {
	ID         string    `json:"id"`
	TurnID     string    `json:"turn_id"`
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}
