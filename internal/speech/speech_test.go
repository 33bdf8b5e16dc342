package speech

import "testing"

func TestBuffer_JoinsWithSpaces(t *testing.T) {
	var b Buffer
	b.Append("hello")
	b.Append("there")
	if got := b.String(); got != "hello there" {
		t.Errorf("expected joined fragments, got %q", got)
	}
}

func TestBuffer_NoDoubleSpace(t *testing.T) {
	var b Buffer
	b.Append("hello ")
	b.Append("there")
	if got := b.String(); got != "hello there" {
		t.Errorf("expected single space at seam, got %q", got)
	}
}

func TestBuffer_IgnoresEmptyFragments(t *testing.T) {
	var b Buffer
	b.Append("")
	b.Append("hi")
	b.Append("")
	if got := b.String(); got != "hi" {
		t.Errorf("expected %q, got %q", "hi", got)
	}
}

func TestBuffer_Reset(t *testing.T) {
	var b Buffer
	b.Append("hello")
	b.Reset()
	if got := b.String(); got != "" {
		t.Errorf("expected empty buffer after reset, got %q", got)
	}
	b.Append("again")
	if got := b.String(); got != "again" {
		t.Errorf("expected %q, got %q", "again", got)
	}
}

func TestErrorCode_Ignorable(t *testing.T) {
	if !ErrNoSpeech.Ignorable() {
		t.Error("no-speech must be ignorable")
	}
	for _, c := range []ErrorCode{ErrNotAllowed, ErrAudioInput, ErrNetworkDown} {
		if c.Ignorable() {
			t.Errorf("%s must not be ignorable", c)
		}
	}
}
