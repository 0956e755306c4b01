package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atende-insights/backend/internal/models"
)

// ErrRowRejected marks a raw row that cannot become a ServiceCall. Rejected
// rows are dropped from the batch, never fatal.
var ErrRowRejected = errors.New("row rejected")

// RawRow is one row of the upload (CSV or XLSX) keyed by canonical field name.
type RawRow map[string]string

// BatchResult reports the outcome of normalizing a sequence of raw rows.
type BatchResult struct {
	Calls    []models.ServiceCall `json:"-"`
	Accepted int                  `json:"accepted"`
	Rejected int                  `json:"rejected"`
	Errors   []string             `json:"errors,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeRow turns a raw row into a canonical ServiceCall, computing the
// derived fields and classifying the theme against rules. Rows missing id,
// start or end, or with unparsable timestamps, are rejected.
func NormalizeRow(row RawRow, rules []models.ThemeRule) (models.ServiceCall, error) {
	id := strings.TrimSpace(row["id"])
	startRaw := strings.TrimSpace(row["dataHoraInicio"])
	endRaw := strings.TrimSpace(row["dataHoraFim"])
	if id == "" || startRaw == "" || endRaw == "" {
		return models.ServiceCall{}, fmt.Errorf("%w: missing id or timestamps", ErrRowRejected)
	}

	start, err := parseTimestamp(startRaw)
	if err != nil {
		return models.ServiceCall{}, fmt.Errorf("%w: bad start timestamp %q", ErrRowRejected, startRaw)
	}
	end, err := parseTimestamp(endRaw)
	if err != nil {
		return models.ServiceCall{}, fmt.Errorf("%w: bad end timestamp %q", ErrRowRejected, endRaw)
	}

	// Negative spans are clamped, not rejected, so a malformed export still
	// imports as a zero-duration record.
	duration := math.Round(end.Sub(start).Minutes())
	if duration < 0 {
		duration = 0
	}

	summary := row["resumoConversa"]
	casa := row["casa"]
	if casa == "" {
		casa = "Unknown"
	}
	_, week := start.ISOWeek()

	call := models.ServiceCall{
		ID:             id,
		Contato:        row["contato"],
		Identificador:  row["identificador"],
		Protocolo:      row["protocolo"],
		Canal:          row["canal"],
		TipoCanal:      row["tipoCanal"],
		ResumoConversa: summary,
		Casa:           casa,
		DataHoraInicio: startRaw,
		DataHoraFim:    endRaw,

		DuracaoMinutos:     duration,
		Data:               start.Format("2006-01-02"),
		Hora:               start.Hour(),
		DiaDaSemana:        start.Weekday().String(),
		Mes:                start.Format("2006-01"),
		Semana:             week,
		CanalNormalizado:   row["canal"] + " - " + row["tipoCanal"],
		FlagFaltaInteracao: strings.Contains(strings.ToLower(casa), "falta de interação"),
		Tema:               ClassifyTheme(summary, rules),
	}
	return call, nil
}

// NormalizeBatch processes rows in order. A rejected row is logged and
// dropped; the batch never aborts.
func NormalizeBatch(rows []RawRow, rules []models.ThemeRule, logger zerolog.Logger) BatchResult {
	result := BatchResult{}
	for i, row := range rows {
		call, err := NormalizeRow(row, rules)
		if err != nil {
			result.Rejected++
			if len(result.Errors) < 20 {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			}
			logger.Warn().Int("row", i+1).Err(err).Msg("row rejected")
			continue
		}
		result.Calls = append(result.Calls, call)
		result.Accepted++
	}
	return result
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}
