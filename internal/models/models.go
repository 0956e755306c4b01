package models

import "time"

// ServiceCall is the canonical record produced by normalization. Raw fields
// keep the column names of the source export; derived fields are computed
// once at normalization time.
type ServiceCall struct {
	ID             string `json:"id"`
	Contato        string `json:"contato"`
	Identificador  string `json:"identificador"`
	Protocolo      string `json:"protocolo"`
	Canal          string `json:"canal"`
	TipoCanal      string `json:"tipoCanal"`
	ResumoConversa string `json:"resumoConversa"`
	Casa           string `json:"casa"`
	DataHoraInicio string `json:"dataHoraInicio"`
	DataHoraFim    string `json:"dataHoraFim"`

	DuracaoMinutos     float64 `json:"duracaoMinutos"`
	Data               string  `json:"data"`
	Hora               int     `json:"hora"`
	DiaDaSemana        string  `json:"diaDaSemana"`
	Mes                string  `json:"mes"`
	Semana             int     `json:"semana"`
	CanalNormalizado   string  `json:"canalNormalizado"`
	FlagFaltaInteracao bool    `json:"flagFaltaInteracao"`
	Tema               string  `json:"tema,omitempty"`
}

// CallRecord is a raw call row as stored in the database. Derived fields are
// not persisted; the normalizer computes them for session imports.
type CallRecord struct {
	ID             int64     `json:"id"`
	Contato        string    `json:"contato"`
	Identificador  string    `json:"identificador"`
	Protocolo      string    `json:"protocolo"`
	Canal          string    `json:"canal"`
	TipoCanal      string    `json:"tipoCanal"`
	ResumoConversa string    `json:"resumoConversa"`
	Casa           string    `json:"casa"`
	DataHoraInicio time.Time `json:"dataHoraInicio"`
	DataHoraFim    time.Time `json:"dataHoraFim"`
}

// ThemeRule maps keywords to a theme label. Rules are evaluated in list
// order; the first keyword match wins.
type ThemeRule struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
}

// FilterState holds the filter dimensions a dashboard session applies to its
// record set. Empty slices and nil dates mean "no restriction".
type FilterState struct {
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	Channels          []string   `json:"channels"`
	Houses            []string   `json:"houses"`
	Themes            []string   `json:"themes"`
	OnlyNoInteraction bool       `json:"onlyNoInteraction"`
}

// GroupCount is one group in a grouped aggregate.
type GroupCount struct {
	Nome  string `json:"nome"`
	Total int    `json:"total"`
}

// TimelinePoint is one day in a volume-over-time series.
type TimelinePoint struct {
	Data  string `json:"data"`
	Total int    `json:"total"`
}

// SummaryStats are the scalar aggregates over a filtered record set.
type SummaryStats struct {
	Total             int     `json:"total"`
	DuracaoMedia      float64 `json:"duracaoMedia"`
	FaltaInteracao    int     `json:"faltaInteracao"`
	FaltaInteracaoPct float64 `json:"faltaInteracaoPct"`
}

// StatsTotals are the distinct-protocol counters of the server-side stats
// endpoint.
type StatsTotals struct {
	Total  int `json:"total"`
	Hoje   int `json:"hoje"`
	Semana int `json:"semana"`
	Mes    int `json:"mes"`
}

// DashboardStats is the payload of GET /api/stats, computed in SQL.
type DashboardStats struct {
	Totais       StatsTotals     `json:"totais"`
	DuracaoMedia float64         `json:"duracaoMedia"`
	PorCanal     []GroupCount    `json:"porCanal"`
	PorCasa      []GroupCount    `json:"porCasa"`
	PorResumo    []GroupCount    `json:"porResumo"`
	Timeline     []TimelinePoint `json:"timeline"`
}
