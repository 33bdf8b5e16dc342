package tutor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/speakcoach/gateway/internal/metrics"
	"github.com/speakcoach/gateway/internal/prompts"
)

// Analyzer produces grammar/vocabulary feedback for one utterance at a time.
type Analyzer struct {
	client *Client
}

// NewAnalyzer creates an analyzer on top of the shared completion client.
func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

// parsedFeedback mirrors the JSON object the analysis prompt asks for.
type parsedFeedback struct {
	DetectedLanguage string   `json:"detectedLanguage"`
	TranslatedText   string   `json:"translatedText"`
	CorrectedText    string   `json:"correctedText"`
	Mistakes         []string `json:"mistakes"`
	Suggestions      []string `json:"suggestions"`
}

// Analyze runs the failover loop for one analysis request and returns a
// normalized record. Failures come back as values with an ErrorType set,
// never as errors: the orchestrator always has something renderable.
func (a *Analyzer) Analyze(ctx context.Context, text, priorQuestion string) Analysis {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("analysis").Observe(time.Since(start).Seconds())
	}()

	messages := []ChatMessage{{Role: "user", Content: prompts.Analysis(text, priorQuestion)}}
	content, err := a.client.exchange(ctx, messages, "json_object")
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			metrics.AnalysisErrors.WithLabelValues(string(ErrorInsufficientCredits)).Inc()
			return Analysis{
				OriginalText:  text,
				CorrectedText: text,
				Mistakes:      []string{"API credit error: insufficient credits on all configured keys."},
				Suggestions:   []string{"Add more credits to your provider account and try again."},
				APIError:      true,
				ErrorType:     ErrorInsufficientCredits,
			}
		}
		slog.Error("analysis failed", "error", err)
		metrics.AnalysisErrors.WithLabelValues(string(ErrorGeneral)).Inc()
		return Analysis{
			OriginalText:  text,
			CorrectedText: text,
			Mistakes:      []string{"Error processing with AI."},
			Suggestions:   []string{"Try again later or check your API configuration."},
			APIError:      true,
			ErrorType:     ErrorGeneral,
		}
	}

	var parsed parsedFeedback
	if err := ExtractJSON(content, &parsed); err != nil {
		slog.Error("analysis reply unparseable", "error", err, "reply_len", len(content))
		metrics.AnalysisErrors.WithLabelValues(string(ErrorParsing)).Inc()
		return Analysis{
			OriginalText:  text,
			CorrectedText: text,
			Mistakes:      []string{"Error parsing AI response. Please try again."},
			Suggestions:   []string{"The AI response format was unexpected. Try speaking more clearly."},
			APIError:      true,
			ErrorType:     ErrorParsing,
		}
	}

	return Analysis{
		OriginalText:     text,
		DetectedLanguage: parsed.DetectedLanguage,
		TranslatedText:   parsed.TranslatedText,
		CorrectedText:    parsed.CorrectedText,
		Mistakes:         orEmpty(parsed.Mistakes),
		Suggestions:      orEmpty(parsed.Suggestions),
	}
}

// orEmpty keeps "none found" distinct from "not analyzed": a successful
// analysis always carries non-nil slices.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
