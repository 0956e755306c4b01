package service

import (
	"testing"

	"github.com/atende-insights/backend/internal/models"
)

func TestClassifyThemeFirstMatchWins(t *testing.T) {
	rules := []models.ThemeRule{
		{Name: "A", Keywords: []string{"x"}},
		{Name: "B", Keywords: []string{"x", "y"}},
	}
	if got := ClassifyTheme("contains x and y", rules); got != "A" {
		t.Fatalf("expected first rule to win, got %q", got)
	}
}

func TestClassifyThemeFallback(t *testing.T) {
	rules := []models.ThemeRule{
		{Name: "Financeiro", Keywords: []string{"boleto"}},
	}
	if got := ClassifyTheme("nenhuma palavra conhecida", rules); got != FallbackTheme {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := ClassifyTheme("qualquer texto", nil); got != FallbackTheme {
		t.Fatalf("expected fallback for empty rule list, got %q", got)
	}
	if got := ClassifyTheme("", rules); got != FallbackTheme {
		t.Fatalf("expected fallback for empty text, got %q", got)
	}
}

func TestClassifyThemeCaseInsensitive(t *testing.T) {
	rules := []models.ThemeRule{
		{Name: "Financeiro", Keywords: []string{"BOLETO"}},
	}
	if got := ClassifyTheme("Preciso do Boleto atualizado", rules); got != "Financeiro" {
		t.Fatalf("expected Financeiro, got %q", got)
	}
}
