package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/atende-insights/backend/internal/classifier"
	"github.com/atende-insights/backend/internal/config"
	"github.com/atende-insights/backend/internal/db"
	"github.com/atende-insights/backend/internal/http/handlers"
	"github.com/atende-insights/backend/internal/http/middleware"
	"github.com/atende-insights/backend/internal/service"

	_ "github.com/atende-insights/backend/docs"
)

func Router(cfg config.Config, store *db.Store, adapter classifier.Adapter, sessions *service.SessionManager, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:      store,
		Rules:      store,
		Sessions:   sessions,
		Classifier: adapter,
		Validator:  validator.New(),
		Logger:     logger,
		AdminKey:   cfg.AdminKey,
		ThemeTopN:  cfg.ThemeTopN,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/stats", h.Stats)
		api.GET("/recentes", h.Recentes)
		api.GET("/protocolo/:protocolo", h.Protocolo)
		api.GET("/casas", h.Casas)
		api.GET("/theme-rules", h.ThemeRulesList)
		api.POST("/ai/classify", h.ClassifyText)

		api.POST("/sessions/import", h.SessionImport)
		api.GET("/sessions/:id/calls", h.SessionCalls)
		api.GET("/sessions/:id/summary", h.SessionSummary)
		api.PATCH("/sessions/:id/filters", h.SessionFiltersPatch)
		api.POST("/sessions/:id/filters/reset", h.SessionFiltersReset)
		api.PATCH("/sessions/:id/calls/:callId/theme", h.SessionThemeOverride)
		api.DELETE("/sessions/:id", h.SessionDelete)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/theme-rules", h.ThemeRuleCreate)
		admin.PUT("/theme-rules/:id", h.ThemeRuleUpdate)
		admin.DELETE("/theme-rules/:id", h.ThemeRuleDelete)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
