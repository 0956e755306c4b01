package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type HTTPAdapter struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	Text   string   `json:"text"`
	Themes []string `json:"themes,omitempty"`
}

type responseBody struct {
	Theme        string  `json:"theme"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"modelVersion"`
}

func (h HTTPAdapter) SuggestTheme(ctx context.Context, text string, themes []string) (Suggestion, int64, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	payload := requestBody{Text: text, Themes: themes}
	b, _ := json.Marshal(payload)
	start := time.Now()

	var r responseBody
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/classify", bytes.NewBuffer(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return errors.New("classifier service error")
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(errors.New("classifier rejected request"))
		}
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return Suggestion{}, time.Since(start).Milliseconds(), err
	}

	return Suggestion{Theme: r.Theme, Confidence: r.Confidence, ModelVersion: r.ModelVersion}, time.Since(start).Milliseconds(), nil
}
