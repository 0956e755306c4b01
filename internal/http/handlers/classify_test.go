package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/atende-insights/backend/internal/classifier"
)

type failingAdapter struct{}

func (failingAdapter) SuggestTheme(ctx context.Context, text string, themes []string) (classifier.Suggestion, int64, error) {
	return classifier.Suggestion{}, 0, errors.New("connection refused")
}

func classifyRouter(adapter classifier.Adapter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		Classifier: adapter,
		Validator:  validator.New(),
		Logger:     zerolog.Nop(),
	}
	r := gin.New()
	r.POST("/api/ai/classify", h.ClassifyText)
	return r
}

func TestClassifyTextSuccess(t *testing.T) {
	r := classifyRouter(classifier.MockAdapter{ModelVersion: "mock-v1"})
	body := strings.NewReader(`{"text":"preciso de boleto","themes":["Financeiro","Suporte"]}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/ai/classify", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var s classifier.Suggestion
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode suggestion: %v", err)
	}
	if s.Theme == "" {
		t.Fatal("expected a suggested theme")
	}
}

func TestClassifyTextUpstreamFailure(t *testing.T) {
	r := classifyRouter(failingAdapter{})
	body := strings.NewReader(`{"text":"qualquer texto"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/ai/classify", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestClassifyTextValidation(t *testing.T) {
	r := classifyRouter(classifier.MockAdapter{})
	body := strings.NewReader(`{"text":""}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/ai/classify", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
