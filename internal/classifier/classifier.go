package classifier

import "context"

// Suggestion is a theme proposal for a free-text summary.
type Suggestion struct {
	Theme        string  `json:"theme"`
	Confidence   float64 `json:"confidence,omitempty"`
	ModelVersion string  `json:"modelVersion,omitempty"`
}

// Adapter suggests a theme for a conversation summary, optionally restricted
// to a candidate list. Implementations may call a remote service; failures
// are retryable by the caller.
type Adapter interface {
	SuggestTheme(ctx context.Context, text string, themes []string) (Suggestion, int64, error)
}
