package tutor

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/speakcoach/gateway/internal/metrics"
)

// ErrNoJSON means no parseable JSON object could be recovered from a reply.
var ErrNoJSON = errors.New("no JSON object in model reply")

var (
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?[ \t]*\n?")
	fenceClose = regexp.MustCompile("\n?```[ \t]*$")
)

// ExtractJSON decodes a JSON object out of a model reply that may be wrapped
// in code fences or surrounded by prose. The model is asked for pure JSON but
// is not contractually guaranteed to comply, so recovery is two-tier: strip
// any fence markers and parse strictly, then fall back to the outermost
// {...} substring. Every failure mode reduces to ErrNoJSON — callers map it
// to a parsing-error result rather than letting it escape.
func ExtractJSON(raw string, v any) error {
	cleaned := strings.TrimSpace(fenceClose.ReplaceAllString(fenceOpen.ReplaceAllString(raw, ""), ""))
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		candidate := raw[start : end+1]
		if gjson.Valid(candidate) {
			if err := json.Unmarshal([]byte(candidate), v); err == nil {
				metrics.ParserFallbacks.Inc()
				return nil
			}
		}
	}

	return ErrNoJSON
}
