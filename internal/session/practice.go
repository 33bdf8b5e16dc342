package session

import (
	"math"
	"sync"
	"time"

	"github.com/speakcoach/gateway/internal/tutor"
)

// Practice accumulates analyses in free-practice mode, where there is no
// role-play partner and no turn limit: each utterance is analyzed on its
// own and the running set is scored on demand.
type Practice struct {
	mu        sync.Mutex
	analyses  []tutor.Analysis
	startedAt time.Time
}

// NewPractice starts an empty free-practice run.
func NewPractice() *Practice {
	return &Practice{startedAt: time.Now()}
}

// Add records one analyzed utterance.
func (p *Practice) Add(a tutor.Analysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyses = append(p.analyses, a)
}

// Sentences returns a copy of the recorded analyses.
func (p *Practice) Sentences() []tutor.Analysis {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tutor.Analysis, len(p.analyses))
	copy(out, p.analyses)
	return out
}

// Reset clears the run for another round.
func (p *Practice) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyses = nil
	p.startedAt = time.Now()
}

// Finish scores the run. The score penalizes the mistake rate up to a
// floor of 50; with no successful analyses it defaults to 50.
func (p *Practice) Finish() (Stats, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{TotalSentences: len(p.analyses)}
	valid, mistakes := 0, 0
	for _, a := range p.analyses {
		if a.APIError {
			stats.APIErrors++
			continue
		}
		valid++
		mistakes += len(a.Mistakes)
		stats.MistakesDetected += len(a.Mistakes)
		if a.CorrectedText != "" && a.CorrectedText != a.OriginalText {
			stats.CorrectionsMade++
		}
		stats.SuggestionsProvided += len(a.Suggestions)
	}
	stats.SessionDuration = formatDuration(time.Since(p.startedAt))

	if valid == 0 {
		return stats, defaultScore
	}
	rate := math.Min(float64(mistakes)/float64(valid), 0.5)
	return stats, int(math.Round(100 - rate*100))
}
