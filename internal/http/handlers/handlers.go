package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/atende-insights/backend/internal/classifier"
	"github.com/atende-insights/backend/internal/db"
	"github.com/atende-insights/backend/internal/models"
	"github.com/atende-insights/backend/internal/service"
)

// RuleSource is the read side of the theme-rule store used by imports and
// reclassification.
type RuleSource interface {
	ListThemeRules(ctx context.Context) ([]models.ThemeRule, error)
}

type Handler struct {
	Store      *db.Store
	Rules      RuleSource
	Sessions   *service.SessionManager
	Classifier classifier.Adapter
	Validator  *validator.Validate
	Logger     zerolog.Logger
	AdminKey   string
	ThemeTopN  int
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statsFilterFromQuery(c *gin.Context) db.StatsFilter {
	return db.StatsFilter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Casas:     c.QueryArray("casa"),
	}
}

// @Summary Dashboard aggregates
// @Description Distinct-protocol totals, average duration, grouped counts and timeline
// @Tags stats
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param casa query []string false "House filter, repeatable"
// @Success 200 {object} models.DashboardStats
// @Router /api/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Store.DashboardStats(c.Request.Context(), statsFilterFromQuery(c))
	if err != nil {
		h.Logger.Error().Err(err).Msg("stats query failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Recent finished calls
// @Tags calls
// @Produce json
// @Success 200 {array} models.CallRecord
// @Router /api/recentes [get]
func (h *Handler) Recentes(c *gin.Context) {
	items, err := h.Store.ListRecentCalls(c.Request.Context(), statsFilterFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list recent calls", err.Error())
		return
	}
	if items == nil {
		items = []models.CallRecord{}
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Look up a call by protocol
// @Tags calls
// @Produce json
// @Param protocolo path string true "Protocol identifier"
// @Success 200 {array} models.CallRecord
// @Failure 404 {object} map[string]any
// @Router /api/protocolo/{protocolo} [get]
func (h *Handler) Protocolo(c *gin.Context) {
	record, err := h.Store.FindByProtocol(c.Request.Context(), c.Param("protocolo"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Protocol not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to look up protocol", err.Error())
		return
	}
	c.JSON(http.StatusOK, []models.CallRecord{record})
}

func (h *Handler) Casas(c *gin.Context) {
	casas, err := h.Store.ListCasas(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list houses", err.Error())
		return
	}
	if casas == nil {
		casas = []string{}
	}
	c.JSON(http.StatusOK, casas)
}

func (h *Handler) ThemeRulesList(c *gin.Context) {
	rules, err := h.Rules.ListThemeRules(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list theme rules", err.Error())
		return
	}
	if rules == nil {
		rules = []models.ThemeRule{}
	}
	c.JSON(http.StatusOK, rules)
}

type ThemeRuleRequest struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords" validate:"required,min=1,dive,required"`
}

func (h *Handler) ThemeRuleCreate(c *gin.Context) {
	var req ThemeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	rule, err := h.Store.CreateThemeRule(c.Request.Context(), req.Name, req.Keywords)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create theme rule", err.Error())
		return
	}
	c.JSON(http.StatusCreated, rule)
}

type ThemeRuleUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1"`
	Keywords []string `json:"keywords" validate:"omitempty,min=1,dive,required"`
}

func (h *Handler) ThemeRuleUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid rule id", nil)
		return
	}
	var req ThemeRuleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	rule, err := h.Store.UpdateThemeRule(c.Request.Context(), id, req.Name, req.Keywords)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Theme rule not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update theme rule", err.Error())
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *Handler) ThemeRuleDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid rule id", nil)
		return
	}
	if err := h.Store.DeleteThemeRule(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Theme rule not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete theme rule", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

type ClassifyRequest struct {
	Text   string   `json:"text" validate:"required"`
	Themes []string `json:"themes"`
}

// @Summary Suggest a theme for free text
// @Tags ai
// @Accept json
// @Produce json
// @Success 200 {object} classifier.Suggestion
// @Failure 502 {object} map[string]any
// @Router /api/ai/classify [post]
func (h *Handler) ClassifyText(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	suggestion, latencyMs, err := h.Classifier.SuggestTheme(c.Request.Context(), req.Text, req.Themes)
	if err != nil {
		h.Logger.Error().Err(err).Int64("latency_ms", latencyMs).Msg("classifier unreachable")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Classifier unavailable, retry later", err.Error())
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
