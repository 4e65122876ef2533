// Package api exposes the conversational agent over HTTP.
//
// Endpoints:
//
//	POST /api/v1/chat  →  one conversation turn
//	GET  /health       →  liveness probe
//	GET  /ready        →  readiness probe (pings the answer store)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: request ID, logging, recovery, CORS
//   - ratelimit.go: per-client token bucket
//   - chat.go: conversation endpoint
//   - health.go: health check endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = ":8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response. Chat
	// turns can take several model rounds, so this stays generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum wait for the next request on keep-alive
	// connections.
	IdleTimeout = 120 * time.Second
)

// Config holds the HTTP serving settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// RatePerMinute is the per-client request budget. Zero disables the
	// transport limiter.
	RatePerMinute int

	// TrustProxy enables X-Real-IP/X-Forwarded-For client resolution.
	TrustProxy bool

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
}

// Server is the HTTP server for the agent's REST API.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	logger *slog.Logger

	limiter *ipLimiter
	health  *HealthHandler
	chat    *ChatHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg Config, responder Responder, db *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	s := &Server{
		cfg:    cfg,
		mux:    mux,
		logger: logger,
		health: NewHealthHandler(db, logger),
		chat:   NewChatHandler(responder, logger),
	}
	if cfg.RatePerMinute > 0 {
		s.limiter = newIPLimiter(cfg.RatePerMinute, cfg.TrustProxy)
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → CORS → rate limit.
func (s *Server) Handler() http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		corsMiddleware(s.cfg.AllowedOrigins),
	}
	if s.limiter != nil {
		middlewares = append(middlewares, s.limiter.middleware)
	}
	return chain(s.mux, middlewares...)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
