package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atende-insights/backend/internal/models"
	"github.com/atende-insights/backend/internal/service"
)

type ImportSummary struct {
	SessionID string   `json:"sessionId"`
	Accepted  int      `json:"accepted"`
	Rejected  int      `json:"rejected"`
	Errors    []string `json:"errors,omitempty"`
}

// @Summary Import a call export into a new dashboard session
// @Description Accepts a CSV or XLSX upload, normalizes rows and classifies themes
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "export file (.csv or .xlsx)"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/sessions/import [post]
func (h *Handler) SessionImport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}

	var rows []service.RawRow
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".csv":
		rows, err = parseCSVRows(file)
	case ".xlsx":
		rows, err = parseXLSXRows(file)
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv or .xlsx", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusBadRequest, "PARSE_ERROR", "Failed to parse upload", err.Error())
		return
	}

	rules, err := h.Rules.ListThemeRules(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load theme rules", err.Error())
		return
	}

	batch := service.NormalizeBatch(rows, rules, h.Logger)
	session := h.Sessions.Create()
	session.Replace(batch.Calls)

	h.Logger.Info().
		Str("session_id", session.ID).
		Int("accepted", batch.Accepted).
		Int("rejected", batch.Rejected).
		Msg("import complete")

	c.JSON(http.StatusOK, ImportSummary{
		SessionID: session.ID,
		Accepted:  batch.Accepted,
		Rejected:  batch.Rejected,
		Errors:    batch.Errors,
	})
}

func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) SessionCalls(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	calls := s.Filtered()
	if calls == nil {
		calls = []models.ServiceCall{}
	}
	c.JSON(http.StatusOK, gin.H{"items": calls, "total": s.Len()})
}

// @Summary Chart-ready aggregates over the session's filtered record set
// @Tags sessions
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/sessions/{id}/summary [get]
func (h *Handler) SessionSummary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	filtered := s.Filtered()
	topN := h.ThemeTopN
	if topN <= 0 {
		topN = 10
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":    service.Summarize(filtered),
		"porData":  service.CountByDate(filtered),
		"porCanal": service.CountByChannel(filtered),
		"porTema":  service.CountByTheme(filtered, topN),
		"porCasa":  service.CountByHouse(filtered),
		"filters":  s.Filters(),
	})
}

type FilterPatchRequest struct {
	StartDate         *string   `json:"startDate"`
	EndDate           *string   `json:"endDate"`
	Channels          *[]string `json:"channels"`
	Houses            *[]string `json:"houses"`
	Themes            *[]string `json:"themes"`
	OnlyNoInteraction *bool     `json:"onlyNoInteraction"`
}

func (h *Handler) SessionFiltersPatch(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req FilterPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}

	patch := service.FilterPatch{
		Channels:          req.Channels,
		Houses:            req.Houses,
		Themes:            req.Themes,
		OnlyNoInteraction: req.OnlyNoInteraction,
	}
	if req.StartDate != nil {
		t, err := parseFilterDate(*req.StartDate, false)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid startDate", err.Error())
			return
		}
		patch.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseFilterDate(*req.EndDate, true)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid endDate", err.Error())
			return
		}
		patch.EndDate = &t
	}

	c.JSON(http.StatusOK, s.MergeFilters(patch))
}

func (h *Handler) SessionFiltersReset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.ResetFilters())
}

type ThemeOverrideRequest struct {
	Tema string `json:"tema" validate:"required"`
}

func (h *Handler) SessionThemeOverride(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req ThemeOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !s.UpdateCallTheme(c.Param("callId"), req.Tema) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Call not found in session", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) SessionDelete(c *gin.Context) {
	if err := h.Sessions.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete session", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// parseFilterDate accepts a bare date or a full timestamp. Bare end dates are
// extended to the last instant of the day so the bound stays inclusive.
func parseFilterDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
