package session

import "github.com/speakcoach/gateway/internal/vocab"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// Feedback is the analysis outcome attached to a user message once its
// analysis completes. APIError feedback is attached too: the transcript
// records that analysis was attempted and failed.
type Feedback struct {
	CorrectedText string   `json:"correctedText,omitempty"`
	Mistakes      []string `json:"mistakes"`
	Suggestions   []string `json:"suggestions"`
	APIError      bool     `json:"apiError,omitempty"`
}

// Message is one transcript entry. User messages carry vocabulary findings
// from submission time and, later, analysis feedback.
type Message struct {
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	Feedback   *Feedback       `json:"feedback,omitempty"`
	Vocabulary *vocab.Analysis `json:"vocabulary,omitempty"`
}
