// Package vocab flags overused words (with stronger alternatives) and
// advanced vocabulary in user utterances. The word lists are static: the
// lookup is local so every submission can be tagged without an API call.
package vocab

import "strings"

// WordHit is one flagged word with its position in the utterance.
type WordHit struct {
	Word         string   `json:"word"`
	Index        int      `json:"index"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Analysis holds the vocabulary findings for one utterance.
type Analysis struct {
	CommonWords   []WordHit `json:"commonWords"`
	AdvancedWords []WordHit `json:"advancedWords"`
}

// alternatives maps common/overused words to stronger substitutes.
var alternatives = map[string][]string{
	"good":   {"excellent", "outstanding", "superb", "wonderful", "fantastic"},
	"bad":    {"poor", "terrible", "awful", "unpleasant", "disappointing"},
	"nice":   {"pleasant", "delightful", "enjoyable", "charming", "lovely"},
	"big":    {"large", "enormous", "substantial", "massive", "extensive"},
	"small":  {"tiny", "compact", "miniature", "petite", "modest"},
	"happy":  {"delighted", "thrilled", "ecstatic", "joyful", "pleased"},
	"sad":    {"unhappy", "melancholy", "gloomy", "downcast", "despondent"},
	"angry":  {"furious", "enraged", "irate", "indignant", "outraged"},
	"scared": {"frightened", "terrified", "petrified", "alarmed", "anxious"},
	"tired":  {"exhausted", "fatigued", "weary", "drained", "spent"},
	"very":   {"extremely", "exceedingly", "immensely", "tremendously", "incredibly"},
	"really": {"genuinely", "truly", "absolutely", "completely", "thoroughly"},
	"thing":  {"item", "object", "element", "component", "entity"},
	"stuff":  {"materials", "items", "possessions", "belongings", "goods"},
	"got":    {"received", "obtained", "acquired", "procured", "gained"},
	"get":    {"obtain", "acquire", "procure", "gain", "secure"},
	"like":   {"enjoy", "appreciate", "favor", "prefer", "admire"},
	"said":   {"mentioned", "stated", "declared", "remarked", "expressed"},
	"went":   {"traveled", "journeyed", "proceeded", "ventured", "headed"},
}

// advanced is the vocabulary worth highlighting as a win.
var advanced = map[string]bool{
	"articulate": true, "eloquent": true, "profound": true, "meticulous": true,
	"diligent": true, "comprehensive": true, "intricate": true, "innovative": true,
	"versatile": true, "exemplary": true, "paramount": true, "imperative": true,
	"substantial": true, "pivotal": true, "integral": true, "fundamental": true,
	"quintessential": true, "unprecedented": true, "exemplify": true, "facilitate": true,
	"implement": true, "optimize": true, "leverage": true, "cultivate": true,
	"enhance": true, "mitigate": true, "alleviate": true, "elucidate": true,
	"elaborate": true, "substantiate": true, "corroborate": true, "scrutinize": true,
	"discern": true, "ascertain": true, "endeavor": true, "persevere": true,
	"resilient": true, "tenacious": true, "adept": true, "proficient": true,
	"cognizant": true, "pragmatic": true, "strategic": true, "analytical": true,
	"methodical": true, "systematic": true, "holistic": true, "nuanced": true,
	"intrinsic": true, "ambiguous": true, "ubiquitous": true, "ephemeral": true,
	"perpetual": true, "arduous": true, "formidable": true, "lucrative": true,
	"prudent": true, "astute": true, "sagacious": true,
}

const punctuation = `.,!?;:'"()`

// Analyze scans text word by word, punctuation-stripped and lowercased.
func Analyze(text string) Analysis {
	result := Analysis{
		CommonWords:   []WordHit{},
		AdvancedWords: []WordHit{},
	}

	for i, word := range strings.Fields(strings.ToLower(text)) {
		clean := strings.Trim(word, punctuation)
		if clean == "" {
			continue
		}
		if alts, ok := alternatives[clean]; ok {
			result.CommonWords = append(result.CommonWords, WordHit{Word: clean, Index: i, Alternatives: alts})
		}
		if advanced[clean] {
			result.AdvancedWords = append(result.AdvancedWords, WordHit{Word: clean, Index: i})
		}
	}

	return result
}
