package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atende-insights/backend/internal/classifier"
	"github.com/atende-insights/backend/internal/config"
	"github.com/atende-insights/backend/internal/db"
	httpapi "github.com/atende-insights/backend/internal/http"
	"github.com/atende-insights/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "atende-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var adapter classifier.Adapter
	if cfg.ClassifierURL == "" {
		adapter = classifier.MockAdapter{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock classifier adapter")
	} else {
		adapter = classifier.HTTPAdapter{BaseURL: cfg.ClassifierURL}
	}

	sessions := service.NewSessionManager()
	router := httpapi.Router(cfg, store, adapter, sessions, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
