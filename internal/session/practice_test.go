package session

import (
	"testing"

	"github.com/speakcoach/gateway/internal/tutor"
)

func TestPractice_CleanRun(t *testing.T) {
	p := NewPractice()
	p.Add(tutor.Analysis{OriginalText: "Hello there.", CorrectedText: "Hello there.", Mistakes: []string{}})
	p.Add(tutor.Analysis{OriginalText: "I am fine.", CorrectedText: "I am fine.", Mistakes: []string{}})

	stats, score := p.Finish()
	if score != 100 {
		t.Errorf("expected 100 for a clean run, got %d", score)
	}
	if stats.TotalSentences != 2 || stats.MistakesDetected != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestPractice_MistakeRatePenalty(t *testing.T) {
	p := NewPractice()
	p.Add(tutor.Analysis{OriginalText: "I goed.", CorrectedText: "I went.", Mistakes: []string{"tense"}})
	p.Add(tutor.Analysis{OriginalText: "All fine.", CorrectedText: "All fine.", Mistakes: []string{}})

	// 1 mistake over 2 valid sentences is a 0.5 rate: 100 - 50 = 50.
	_, score := p.Finish()
	if score != 50 {
		t.Errorf("expected 50, got %d", score)
	}
}

func TestPractice_PenaltyFloor(t *testing.T) {
	p := NewPractice()
	p.Add(tutor.Analysis{OriginalText: "Bad one.", Mistakes: []string{"a", "b", "c", "d"}})

	// Rate caps at 0.5 regardless of how many mistakes pile up.
	_, score := p.Finish()
	if score != 50 {
		t.Errorf("expected floor of 50, got %d", score)
	}
}

func TestPractice_AllFailedDefaults(t *testing.T) {
	p := NewPractice()
	p.Add(tutor.Analysis{OriginalText: "Hello.", APIError: true, ErrorType: tutor.ErrorGeneral})

	stats, score := p.Finish()
	if score != 50 {
		t.Errorf("expected default 50, got %d", score)
	}
	if stats.APIErrors != 1 {
		t.Errorf("expected 1 API error, got %d", stats.APIErrors)
	}
}

func TestPractice_Reset(t *testing.T) {
	p := NewPractice()
	p.Add(tutor.Analysis{OriginalText: "Hello.", Mistakes: []string{"x"}})
	p.Reset()

	if got := len(p.Sentences()); got != 0 {
		t.Errorf("expected empty run after reset, got %d", got)
	}
	stats, score := p.Finish()
	if score != 50 || stats.TotalSentences != 0 {
		t.Errorf("reset run must score as empty: %d, %+v", score, stats)
	}
}
