// Package app ties the webhook server mode together: configuration, the
// worker pool, and the HTTP server share one lifecycle here.
package app

import (
	"log/slog"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
	"github.com/mkraev/diffsentry/internal/server"
)

// App holds the long-lived components of server mode.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from its already-constructed parts.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting diffsentry server",
		"port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers,
		"llm_provider", a.cfg.LLM.Provider,
	)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts the application down cleanly: the HTTP server first so no new
// events arrive, then the dispatcher so in-flight reviews can finish.
func (a *App) Stop() error {
	a.logger.Info("shutting down diffsentry services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("diffsentry stopped")
	return nil
}
