package service

import (
	"github.com/atende-insights/backend/internal/models"
)

// ApplyFilters returns the subsequence of calls accepted by every active
// filter dimension. Unset dimensions accept everything; input order is
// preserved and inputs are not mutated.
func ApplyFilters(calls []models.ServiceCall, filters models.FilterState) []models.ServiceCall {
	channels := toSet(filters.Channels)
	houses := toSet(filters.Houses)
	themes := toSet(filters.Themes)

	out := make([]models.ServiceCall, 0, len(calls))
	for _, call := range calls {
		if filters.StartDate != nil || filters.EndDate != nil {
			// Only active date dimensions may reject a record, so the start
			// timestamp is parsed lazily.
			start, err := parseTimestamp(call.DataHoraInicio)
			if err != nil {
				continue
			}
			if filters.StartDate != nil && start.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && start.After(*filters.EndDate) {
				continue
			}
		}
		if len(channels) > 0 {
			if _, ok := channels[call.CanalNormalizado]; !ok {
				continue
			}
		}
		if len(houses) > 0 {
			if _, ok := houses[call.Casa]; !ok {
				continue
			}
		}
		if len(themes) > 0 {
			tema := call.Tema
			if tema == "" {
				tema = FallbackTheme
			}
			if _, ok := themes[tema]; !ok {
				continue
			}
		}
		if filters.OnlyNoInteraction && !call.FlagFaltaInteracao {
			continue
		}
		out = append(out, call)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
