// Package server implements the webhook HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 90 * time.Second
	shutdownGrace     = 20 * time.Second
)

// Server is the webhook-facing HTTP front of the review service. It holds no
// review state; handlers hand all work to the job dispatcher.
type Server struct {
	httpSrv *http.Server
	logger  *slog.Logger
}

// NewServer builds the webhook HTTP server around the shared router.
func NewServer(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *Server {
	return &Server{
		httpSrv: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           NewRouter(cfg, dispatcher, logger),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
	}
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("webhook server listening", "address", s.httpSrv.Addr)

	err := s.httpSrv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.httpSrv.Addr, err)
	}
	return nil
}

// Stop drains in-flight requests within a bounded grace period.
func (s *Server) Stop() error {
	s.logger.Info("draining webhook server", "grace", shutdownGrace.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	return s.httpSrv.Shutdown(ctx)
}
