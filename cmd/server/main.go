package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samalsubrat/mk-price-tracker/config"
	"github.com/samalsubrat/mk-price-tracker/internal/app"
	httpDelivery "github.com/samalsubrat/mk-price-tracker/internal/delivery/http"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

func main() {
	// Load configuration (.env first, then config file and MKPRICE_* env vars)
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Server.Environment})

	logx.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("storage", cfg.Storage.Path).
		Int("sources", len(cfg.Feeds.Sources)).
		Msg("starting mkprice tracker v1.0.0")

	if cfg.Server.APIKey == "" {
		logx.Warn().Msg("no API key configured; refresh endpoint is open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure and usecase layers
	application, err := app.New(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	logx.Info().
		Int("noise_version", application.Canonicalizer.Version()).
		Dur("cache_ttl", cfg.Cache.TTL).
		Str("feeds", cfg.Feeds.BaseURL).
		Msg("catalog service ready")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(application.Catalog)
	router := httpDelivery.SetupRouter(cfg, handler, application.Metrics)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
