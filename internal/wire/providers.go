// Package wire assembles the server-mode dependency graph.
package wire

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/mkraev/diffsentry/internal/app"
	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
	"github.com/mkraev/diffsentry/internal/jobs"
	"github.com/mkraev/diffsentry/internal/llm"
	"github.com/mkraev/diffsentry/internal/logger"
	"github.com/mkraev/diffsentry/internal/orchestrator"
	"github.com/mkraev/diffsentry/internal/prompt"
	"github.com/mkraev/diffsentry/internal/server"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	prompt.NewManager,
	provideLogWriter,
	provideLogger,
	provideGenerator,
	provideReviewer,
	provideBuilder,
	provideReviewJob,
	provideDispatcher,
)

func provideLogWriter() io.Writer {
	return os.Stdout
}

func provideLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logger.NewLogger(cfg.LogLevel, cfg.LogFormat, w)
}

func provideGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Generator, error) {
	return llm.NewModel(ctx, cfg.LLM, logger)
}

func provideReviewer(gen llm.Generator, cfg *config.Config, logger *slog.Logger) orchestrator.Reviewer {
	return llm.NewClient(gen, cfg.LLM, logger)
}

func provideBuilder(mgr *prompt.Manager, cfg *config.Config) *prompt.Builder {
	return prompt.NewBuilder(mgr, cfg.LLM.Provider, cfg.Review.Categories, nil)
}

func provideReviewJob(cfg *config.Config, builder *prompt.Builder, reviewer orchestrator.Reviewer, logger *slog.Logger) core.Job {
	return jobs.NewReviewJob(cfg, builder, reviewer, logger)
}

func provideDispatcher(job core.Job, cfg *config.Config, logger *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.Server.MaxWorkers, logger)
}
