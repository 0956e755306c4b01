package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/atende-insights/backend/internal/db"
)

func themeRuleRouter(store *db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		Store:     store,
		Rules:     store,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
	r := gin.New()
	r.POST("/api/theme-rules", h.ThemeRuleCreate)
	r.PUT("/api/theme-rules/:id", h.ThemeRuleUpdate)
	r.DELETE("/api/theme-rules/:id", h.ThemeRuleDelete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestThemeRuleCreateValidation(t *testing.T) {
	r := themeRuleRouter(nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"keywords":["boleto"]}`},
		{"empty keywords", `{"name":"Financeiro","keywords":[]}`},
		{"blank keyword", `{"name":"Financeiro","keywords":["boleto",""]}`},
		{"malformed json", `{"name":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/theme-rules", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"error"`) {
				t.Fatalf("expected error envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestThemeRuleUpdateValidation(t *testing.T) {
	r := themeRuleRouter(nil)

	w := doJSON(t, r, http.MethodPut, "/api/theme-rules/abc", `{"name":"X"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/theme-rules/1", `{"keywords":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty keyword list, got %d %s", w.Code, w.Body.String())
	}
}

func TestThemeRuleDeleteInvalidID(t *testing.T) {
	r := themeRuleRouter(nil)

	req, _ := http.NewRequest(http.MethodDelete, "/api/theme-rules/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestThemeRuleNotFoundIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := db.New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer store.Close()

	r := themeRuleRouter(store)

	w := doJSON(t, r, http.MethodPut, "/api/theme-rules/999999999", `{"name":"X"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on update of missing rule, got %d %s", w.Code, w.Body.String())
	}

	req, _ := http.NewRequest(http.MethodDelete, "/api/theme-rules/999999999", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on delete of missing rule, got %d", w.Code)
	}
}
