package env

import (
	"testing"
	"time"
)

func TestStr(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	if got := Str("TEST_STR", "fallback"); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if got := Str("TEST_STR_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := Int("TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	t.Setenv("TEST_INT_BAD", "not-a-number")
	if got := Int("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("expected fallback on parse failure, got %d", got)
	}
}

func TestDuration_Milliseconds(t *testing.T) {
	t.Setenv("TEST_MS", "1500")
	if got := Duration("TEST_MS", time.Second); got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", got)
	}
	if got := Duration("TEST_MS_MISSING", time.Second); got != time.Second {
		t.Errorf("expected fallback, got %v", got)
	}
}
