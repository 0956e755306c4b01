package classifier

import (
	"context"
	"time"

	"github.com/atende-insights/backend/internal/utils"
)

// MockAdapter picks deterministically from the candidate themes so local
// runs behave the same across restarts.
type MockAdapter struct {
	ModelVersion string
}

func (m MockAdapter) SuggestTheme(ctx context.Context, text string, themes []string) (Suggestion, int64, error) {
	start := time.Now()
	if len(themes) == 0 {
		themes = []string{"Financeiro", "Suporte", "Comercial", "Outros"}
	}
	// Index with the unsigned hash; converting to int first can go negative.
	h := utils.HashStringToUint64(text)
	confidence := 0.75
	if h%5 == 0 {
		confidence = 0.62
	}
	suggestion := Suggestion{
		Theme:        themes[h%uint64(len(themes))],
		Confidence:   confidence,
		ModelVersion: m.ModelVersion,
	}
	return suggestion, time.Since(start).Milliseconds(), nil
}
