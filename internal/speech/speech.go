// Package speech defines the narrow capability surface the browser's native
// speech engines expose to the core. The core only consumes finalized
// transcript fragments and fires speak requests; capture and synthesis
// themselves live on the client.
package speech

import "strings"

// TranscriptEvent is one fragment from the recognition stream. Only final
// fragments are folded into the input buffer; interim ones are display-only.
type TranscriptEvent struct {
	IsFinal bool   `json:"is_final"`
	Text    string `json:"text"`
}

// ErrorCode identifies a recognition failure reported by the capability.
type ErrorCode string

const (
	// ErrNoSpeech fires when the engine heard nothing. It is part of normal
	// operation and is silently ignored.
	ErrNoSpeech ErrorCode = "no-speech"

	ErrNotAllowed  ErrorCode = "not-allowed"
	ErrAudioInput  ErrorCode = "audio-capture"
	ErrNetworkDown ErrorCode = "network"
)

// Ignorable reports whether the error should be swallowed instead of
// surfaced to the user.
func (c ErrorCode) Ignorable() bool {
	return c == ErrNoSpeech
}

// Recognizer is the start/stop listening capability. Implemented by the
// client, consumed here through typed events rather than ambient callbacks.
type Recognizer interface {
	Start() error
	Stop()
	Events() <-chan TranscriptEvent
	Errors() <-chan ErrorCode
}

// Speaker is the fire-and-forget text-to-speech capability. Nothing in the
// core awaits its completion.
type Speaker interface {
	Speak(text string)
}

// Buffer accumulates finalized transcript fragments into one submission.
type Buffer struct {
	b strings.Builder
}

// Append folds a finalized fragment into the buffer, inserting a space at
// the seam when neither side provides one.
func (b *Buffer) Append(fragment string) {
	if fragment == "" {
		return
	}
	cur := b.b.String()
	if strings.TrimSpace(cur) == "" {
		b.b.Reset()
		b.b.WriteString(fragment)
		return
	}
	if !strings.HasSuffix(cur, " ") && !strings.HasPrefix(fragment, " ") {
		b.b.WriteString(" ")
	}
	b.b.WriteString(fragment)
}

// String returns the accumulated text.
func (b *Buffer) String() string {
	return b.b.String()
}

// Reset clears the buffer for the next submission.
func (b *Buffer) Reset() {
	b.b.Reset()
}
