package tutor

// ChatMessage is one entry of a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryMessage is one prior conversation turn handed to the responder.
// FromAgent entries are serialized with the assistant role.
type HistoryMessage struct {
	FromAgent bool
	Content   string
}

// ErrorType classifies an analysis failure. Values are stable: the UI keys
// remediation hints off them.
type ErrorType string

const (
	ErrorInsufficientCredits ErrorType = "INSUFFICIENT_CREDITS"
	ErrorParsing             ErrorType = "PARSING_ERROR"
	ErrorGeneral             ErrorType = "GENERAL_ERROR"
)

// Analysis is the normalized feedback record for one user utterance.
// Either the success fields are populated, or APIError is set with an
// ErrorType — never both.
type Analysis struct {
	OriginalText     string    `json:"originalText"`
	DetectedLanguage string    `json:"detectedLanguage,omitempty"`
	TranslatedText   string    `json:"translatedText,omitempty"`
	CorrectedText    string    `json:"correctedText,omitempty"`
	Mistakes         []string  `json:"mistakes"`
	Suggestions      []string  `json:"suggestions"`
	APIError         bool      `json:"apiError,omitempty"`
	ErrorType        ErrorType `json:"errorType,omitempty"`
}

// Reply is the responder's outcome. Success false carries the responder's
// own fallback apology so the conversation is never left hanging.
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}
