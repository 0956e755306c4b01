package service

import (
	"math"
	"sort"

	"github.com/atende-insights/backend/internal/models"
)

// CountByDate groups calls by calendar date of start, ascending by date.
func CountByDate(calls []models.ServiceCall) []models.TimelinePoint {
	groups := groupCounts(calls, func(c models.ServiceCall) string { return c.Data })
	out := make([]models.TimelinePoint, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.TimelinePoint{Data: g.Nome, Total: g.Total})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Data < out[j].Data })
	return out
}

// CountByChannel groups calls by normalized channel key, descending by count.
func CountByChannel(calls []models.ServiceCall) []models.GroupCount {
	return sortDesc(groupCounts(calls, func(c models.ServiceCall) string { return c.CanalNormalizado }))
}

// CountByHouse groups calls by casa, descending by count.
func CountByHouse(calls []models.ServiceCall) []models.GroupCount {
	return sortDesc(groupCounts(calls, func(c models.ServiceCall) string { return c.Casa }))
}

// CountByTheme groups calls by theme (unset counts as the fallback),
// descending by count, truncated to topN when topN > 0.
func CountByTheme(calls []models.ServiceCall, topN int) []models.GroupCount {
	groups := sortDesc(groupCounts(calls, func(c models.ServiceCall) string {
		if c.Tema == "" {
			return FallbackTheme
		}
		return c.Tema
	}))
	if topN > 0 && len(groups) > topN {
		groups = groups[:topN]
	}
	return groups
}

// Summarize computes the scalar stats over a filtered set. An empty set
// yields zero averages instead of dividing by zero.
func Summarize(calls []models.ServiceCall) models.SummaryStats {
	stats := models.SummaryStats{Total: len(calls)}
	if len(calls) == 0 {
		return stats
	}
	var totalMinutes float64
	for _, c := range calls {
		totalMinutes += c.DuracaoMinutos
		if c.FlagFaltaInteracao {
			stats.FaltaInteracao++
		}
	}
	stats.DuracaoMedia = round1(totalMinutes / float64(len(calls)))
	stats.FaltaInteracaoPct = round1(float64(stats.FaltaInteracao) / float64(len(calls)) * 100)
	return stats
}

// groupCounts keeps first-occurrence order so that equal counts tie-break by
// insertion order under the stable sorts above.
func groupCounts(calls []models.ServiceCall, key func(models.ServiceCall) string) []models.GroupCount {
	index := map[string]int{}
	var out []models.GroupCount
	for _, c := range calls {
		k := key(c)
		if i, ok := index[k]; ok {
			out[i].Total++
			continue
		}
		index[k] = len(out)
		out = append(out, models.GroupCount{Nome: k, Total: 1})
	}
	return out
}

func sortDesc(groups []models.GroupCount) []models.GroupCount {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
	return groups
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
