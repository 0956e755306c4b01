package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atende-insights/backend/internal/models"
)

// HouseFallback is what the SQL layer groups empty or null casa under. The
// client-side normalizer uses "Unknown" instead; the two defaults are
// intentionally separate policies.
const HouseFallback = "Falta de Interação"

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListThemeRules(ctx context.Context) ([]models.ThemeRule, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, keywords, created_at FROM theme_rules ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ThemeRule
	for rows.Next() {
		var r models.ThemeRule
		if err := rows.Scan(&r.ID, &r.Name, &r.Keywords, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetThemeRule(ctx context.Context, id int) (models.ThemeRule, error) {
	var r models.ThemeRule
	err := s.Pool.QueryRow(ctx, `SELECT id, name, keywords, created_at FROM theme_rules WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.Keywords, &r.CreatedAt)
	return r, err
}

func (s *Store) CreateThemeRule(ctx context.Context, name string, keywords []string) (models.ThemeRule, error) {
	var r models.ThemeRule
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO theme_rules (name, keywords, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, name, keywords, created_at
	`, name, keywords).Scan(&r.ID, &r.Name, &r.Keywords, &r.CreatedAt)
	return r, err
}

// UpdateThemeRule applies a partial update. Nil name / nil keywords leave the
// column untouched. Returns pgx.ErrNoRows for an unknown id.
func (s *Store) UpdateThemeRule(ctx context.Context, id int, name *string, keywords []string) (models.ThemeRule, error) {
	var r models.ThemeRule
	err := s.Pool.QueryRow(ctx, `
		UPDATE theme_rules
		SET name = COALESCE($2, name), keywords = COALESCE($3, keywords)
		WHERE id = $1
		RETURNING id, name, keywords, created_at
	`, id, name, keywords).Scan(&r.ID, &r.Name, &r.Keywords, &r.CreatedAt)
	return r, err
}

func (s *Store) DeleteThemeRule(ctx context.Context, id int) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM theme_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// StatsFilter narrows the server-side aggregates. Dates are inclusive
// YYYY-MM-DD bounds on the call's end timestamp; Casas may include the
// HouseFallback label to select rows with empty or null casa.
type StatsFilter struct {
	StartDate string
	EndDate   string
	Casas     []string
}

func (f StatsFilter) clauses(args *[]any) []string {
	var wheres []string
	if f.StartDate != "" && f.EndDate != "" {
		*args = append(*args, f.StartDate)
		wheres = append(wheres, fmt.Sprintf("data_hora_fim::date >= $%d::date", len(*args)))
		*args = append(*args, f.EndDate)
		wheres = append(wheres, fmt.Sprintf("data_hora_fim::date <= $%d::date", len(*args)))
	}

	var casas []string
	hasFallback := false
	for _, c := range f.Casas {
		if c == "Todas" {
			continue
		}
		if c == HouseFallback {
			hasFallback = true
			continue
		}
		casas = append(casas, c)
	}
	var conditions []string
	if len(casas) > 0 {
		*args = append(*args, casas)
		conditions = append(conditions, fmt.Sprintf("TRIM(casa) = ANY($%d)", len(*args)))
	}
	if hasFallback {
		conditions = append(conditions, "(TRIM(casa) = '' OR casa IS NULL)")
	}
	if len(conditions) > 0 {
		wheres = append(wheres, "("+strings.Join(conditions, " OR ")+")")
	}
	return wheres
}

func whereClause(wheres []string) string {
	if len(wheres) == 0 {
		return ""
	}
	return " AND " + strings.Join(wheres, " AND ")
}

// DashboardStats computes the aggregate payload in SQL, counting distinct
// protocols so repeated rows of one call are not double counted.
func (s *Store) DashboardStats(ctx context.Context, f StatsFilter) (models.DashboardStats, error) {
	stats := models.DashboardStats{
		PorCanal:  []models.GroupCount{},
		PorCasa:   []models.GroupCount{},
		PorResumo: []models.GroupCount{},
		Timeline:  []models.TimelinePoint{},
	}

	var args []any
	filter := whereClause(f.clauses(&args))

	err := s.Pool.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT protocolo),
			COUNT(DISTINCT protocolo) FILTER (WHERE data_hora_fim::date = CURRENT_DATE),
			COUNT(DISTINCT protocolo) FILTER (WHERE date_trunc('week', data_hora_fim) = date_trunc('week', NOW())),
			COUNT(DISTINCT protocolo) FILTER (WHERE date_trunc('month', data_hora_fim) = date_trunc('month', NOW()))
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL`+filter,
		args...).Scan(&stats.Totais.Total, &stats.Totais.Hoje, &stats.Totais.Semana, &stats.Totais.Mes)
	if err != nil {
		return stats, err
	}

	err = s.Pool.QueryRow(ctx, `
		SELECT COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (data_hora_fim - data_hora_inicio)) / 60)::numeric, 1), 0)::float8
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL AND data_hora_inicio IS NOT NULL`+filter,
		args...).Scan(&stats.DuracaoMedia)
	if err != nil {
		return stats, err
	}

	stats.PorCanal, err = s.groupedCounts(ctx, `
		SELECT canal, COUNT(DISTINCT protocolo) AS total
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL`+filter+`
		GROUP BY canal
		ORDER BY total DESC`, args)
	if err != nil {
		return stats, err
	}

	stats.PorCasa, err = s.groupedCounts(ctx, `
		SELECT COALESCE(NULLIF(TRIM(casa), ''), '`+HouseFallback+`') AS nome, COUNT(DISTINCT protocolo) AS total
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL`+filter+`
		GROUP BY nome
		ORDER BY total DESC
		LIMIT 10`, args)
	if err != nil {
		return stats, err
	}

	stats.PorResumo, err = s.groupedCounts(ctx, `
		SELECT resumo_conversa AS nome, COUNT(DISTINCT protocolo) AS total
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL
			AND resumo_conversa IS NOT NULL AND resumo_conversa != ''`+filter+`
		GROUP BY nome
		ORDER BY total DESC
		LIMIT 10`, args)
	if err != nil {
		return stats, err
	}

	// Timeline falls back to the last 30 days when no range is given.
	timelineArgs := args
	timelineFilter := filter
	if f.StartDate == "" || f.EndDate == "" {
		timelineArgs = nil
		timelineFilter = whereClause(StatsFilter{Casas: f.Casas}.clauses(&timelineArgs))
		timelineFilter += " AND data_hora_fim >= CURRENT_DATE - INTERVAL '30 days'"
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT data_hora_fim::date AS data, COUNT(DISTINCT protocolo) AS total
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL`+timelineFilter+`
		GROUP BY data
		ORDER BY data ASC`, timelineArgs...)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var day time.Time
		var total int
		if err := rows.Scan(&day, &total); err != nil {
			return stats, err
		}
		stats.Timeline = append(stats.Timeline, models.TimelinePoint{Data: day.Format("2006-01-02"), Total: total})
	}
	return stats, rows.Err()
}

func (s *Store) groupedCounts(ctx context.Context, query string, args []any) ([]models.GroupCount, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.GroupCount{}
	for rows.Next() {
		var g models.GroupCount
		if err := rows.Scan(&g.Nome, &g.Total); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListRecentCalls returns finished calls deduplicated to the latest row per
// protocol, newest first.
func (s *Store) ListRecentCalls(ctx context.Context, f StatsFilter) ([]models.CallRecord, error) {
	var args []any
	filter := whereClause(f.clauses(&args))

	rows, err := s.Pool.Query(ctx, `
		SELECT t.id, t.contato, t.identificador, t.protocolo, t.canal, t.tipo_canal, t.resumo_conversa,
			COALESCE(NULLIF(TRIM(t.casa), ''), '`+HouseFallback+`') AS casa,
			t.data_hora_inicio, t.data_hora_fim
		FROM service_calls t
		INNER JOIN (
			SELECT MAX(id) AS max_id
			FROM service_calls
			WHERE data_hora_fim IS NOT NULL`+filter+`
			GROUP BY protocolo
		) latest ON t.id = latest.max_id
		ORDER BY t.data_hora_fim DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CallRecord
	for rows.Next() {
		var r models.CallRecord
		if err := rows.Scan(&r.ID, &r.Contato, &r.Identificador, &r.Protocolo, &r.Canal, &r.TipoCanal,
			&r.ResumoConversa, &r.Casa, &r.DataHoraInicio, &r.DataHoraFim); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindByProtocol returns the latest row for a protocol, or pgx.ErrNoRows.
func (s *Store) FindByProtocol(ctx context.Context, protocolo string) (models.CallRecord, error) {
	var r models.CallRecord
	err := s.Pool.QueryRow(ctx, `
		SELECT id, contato, identificador, protocolo, canal, tipo_canal, resumo_conversa,
			COALESCE(NULLIF(TRIM(casa), ''), '`+HouseFallback+`') AS casa,
			data_hora_inicio, data_hora_fim
		FROM service_calls
		WHERE protocolo = $1
		ORDER BY id DESC
		LIMIT 1`, protocolo).
		Scan(&r.ID, &r.Contato, &r.Identificador, &r.Protocolo, &r.Canal, &r.TipoCanal,
			&r.ResumoConversa, &r.Casa, &r.DataHoraInicio, &r.DataHoraFim)
	return r, err
}

func (s *Store) ListCasas(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT DISTINCT COALESCE(NULLIF(TRIM(casa), ''), '`+HouseFallback+`') AS nome
		FROM service_calls
		WHERE data_hora_fim IS NOT NULL
		ORDER BY nome ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var nome string
		if err := rows.Scan(&nome); err != nil {
			return nil, err
		}
		out = append(out, nome)
	}
	return out, rows.Err()
}
