package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/monisha-km/resume-agent/internal/api"
	"github.com/monisha-km/resume-agent/internal/app"
	"github.com/monisha-km/resume-agent/internal/config"
)

// runServe initializes the application and starts the HTTP API server,
// blocking until SIGINT/SIGTERM.
func runServe(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.ValidateProvider(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting resume agent", "version", AppVersion)

	a, err := app.Setup(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(api.Config{
		Addr:           cfg.Addr,
		RatePerMinute:  cfg.RateBurst,
		TrustProxy:     cfg.TrustProxy,
		AllowedOrigins: cfg.CORS,
	}, a.Engine, a.DB, logger)

	logger.Info("HTTP server ready",
		"addr", cfg.Addr,
		"chat", "/api/v1/chat",
		"health", "/health, /ready",
	)

	return srv.Run(ctx)
}
