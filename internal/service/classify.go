package service

import (
	"strings"

	"github.com/atende-insights/backend/internal/models"
)

// FallbackTheme is assigned when no rule matches.
const FallbackTheme = "Outros"

// ClassifyTheme scans rules in list order and returns the name of the first
// rule with a keyword contained in text. Matching is case-insensitive
// substring; there is no scoring, the first hit wins.
func ClassifyTheme(text string, rules []models.ThemeRule) string {
	normalized := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return rule.Name
			}
		}
	}
	return FallbackTheme
}
