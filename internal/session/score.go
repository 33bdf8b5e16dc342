package session

import (
	"fmt"
	"math"
	"time"

	"github.com/speakcoach/gateway/internal/vocab"
)

// defaultScore is reported when every analysis failed: there is no signal
// either way, so the session is scored as average rather than zero.
const defaultScore = 50

// Stats summarizes what happened during a session.
type Stats struct {
	TotalSentences      int    `json:"totalSentences"`
	MistakesDetected    int    `json:"mistakesDetected"`
	CorrectionsMade     int    `json:"correctionsMade"`
	SuggestionsProvided int    `json:"suggestionsProvided"`
	APIErrors           int    `json:"apiErrors"`
	SessionDuration     string `json:"sessionDuration"`
}

// Evaluation is the end-of-session report card.
type Evaluation struct {
	Overall         int             `json:"overall"`
	Accuracy        int             `json:"accuracy"`
	Vocabulary      int             `json:"vocabulary"`
	TotalMistakes   int             `json:"totalMistakes"`
	CommonMistakes  []string        `json:"commonMistakes"`
	WordSuggestions []vocab.WordHit `json:"wordSuggestions"`
	AdvancedWords   []vocab.WordHit `json:"advancedWords"`
	Stats           Stats           `json:"stats"`
}

// Score computes the report card from a finished transcript. It is a pure
// function of the transcript: callers can re-run it without side effects.
//
// A user message counts toward accuracy only when its analysis actually
// succeeded. If every analysis failed, all scores default to 50.
func Score(transcript []Message, startedAt time.Time) Evaluation {
	ev := Evaluation{
		CommonMistakes:  []string{},
		WordSuggestions: []vocab.WordHit{},
		AdvancedWords:   []vocab.WordHit{},
	}

	valid, mistaken := 0, 0
	seen := map[string]bool{}
	for _, m := range transcript {
		if m.Role != RoleUser {
			continue
		}
		ev.Stats.TotalSentences++
		if m.Vocabulary != nil {
			ev.WordSuggestions = append(ev.WordSuggestions, m.Vocabulary.CommonWords...)
			ev.AdvancedWords = append(ev.AdvancedWords, m.Vocabulary.AdvancedWords...)
		}
		if m.Feedback == nil {
			continue
		}
		if m.Feedback.APIError {
			ev.Stats.APIErrors++
			continue
		}
		valid++
		if len(m.Feedback.Mistakes) > 0 {
			mistaken++
			ev.Stats.MistakesDetected += len(m.Feedback.Mistakes)
			for _, mistake := range m.Feedback.Mistakes {
				if !seen[mistake] {
					seen[mistake] = true
					ev.CommonMistakes = append(ev.CommonMistakes, mistake)
				}
			}
		}
		if m.Feedback.CorrectedText != "" && m.Feedback.CorrectedText != m.Content {
			ev.Stats.CorrectionsMade++
		}
		ev.Stats.SuggestionsProvided += len(m.Feedback.Suggestions)
	}

	ev.TotalMistakes = ev.Stats.MistakesDetected
	ev.Stats.SessionDuration = formatDuration(time.Since(startedAt))

	if valid == 0 {
		ev.Overall, ev.Accuracy, ev.Vocabulary = defaultScore, defaultScore, defaultScore
		return ev
	}

	acc := 100 * (1 - float64(mistaken)/float64(valid))
	if acc < 0 {
		acc = 0
	}
	ev.Accuracy = int(math.Round(acc))

	vocabScore := 10*len(ev.AdvancedWords) - 5*len(ev.WordSuggestions) + 70
	if vocabScore > 100 {
		vocabScore = 100
	}
	if vocabScore < 0 {
		vocabScore = 0
	}
	ev.Vocabulary = vocabScore

	ev.Overall = int(math.Round(0.7*acc + 0.3*float64(vocabScore)))
	return ev
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
