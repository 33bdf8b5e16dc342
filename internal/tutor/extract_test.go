package tutor

import (
	"errors"
	"testing"
)

type feedbackShape struct {
	CorrectedText string   `json:"correctedText"`
	Mistakes      []string `json:"mistakes"`
}

func TestExtractJSON_Plain(t *testing.T) {
	raw := `{"correctedText": "I went home.", "mistakes": ["tense"]}`
	var out feedbackShape
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CorrectedText != "I went home." {
		t.Errorf("expected corrected text, got %q", out.CorrectedText)
	}
	if len(out.Mistakes) != 1 || out.Mistakes[0] != "tense" {
		t.Errorf("unexpected mistakes: %v", out.Mistakes)
	}
}

func TestExtractJSON_FencedWithLanguageTag(t *testing.T) {
	raw := "```json\n{\"correctedText\": \"ok\", \"mistakes\": []}\n```"
	var out feedbackShape
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CorrectedText != "ok" {
		t.Errorf("expected ok, got %q", out.CorrectedText)
	}
}

func TestExtractJSON_FencedBare(t *testing.T) {
	raw := "```\n{\"correctedText\": \"ok\", \"mistakes\": []}\n```"
	var out feedbackShape
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractJSON_SurroundedByProse(t *testing.T) {
	raw := "Here is your analysis:\n{\"correctedText\": \"fine\", \"mistakes\": []}\nHope that helps!"
	var out feedbackShape
	if err := ExtractJSON(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CorrectedText != "fine" {
		t.Errorf("expected fine, got %q", out.CorrectedText)
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	var out feedbackShape
	if err := ExtractJSON("I cannot produce JSON today.", &out); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtractJSON_MalformedBraces(t *testing.T) {
	var out feedbackShape
	if err := ExtractJSON("{not json at all}", &out); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}
