// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/mkraev/diffsentry/internal/app"
	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/prompt"
	"github.com/mkraev/diffsentry/internal/server"
)

// InitializeApp creates and wires all server-mode dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.GitHub.RequireApp(); err != nil {
		return nil, nil, fmt.Errorf("server mode requires GitHub App credentials: %w", err)
	}

	logWriter := provideLogWriter()
	slogLogger := provideLogger(cfg, logWriter)

	generator, err := provideGenerator(ctx, cfg, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model backend: %w", err)
	}
	reviewer := provideReviewer(generator, cfg, slogLogger)

	promptMgr, err := prompt.NewManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	builder := provideBuilder(promptMgr, cfg)

	reviewJob := provideReviewJob(cfg, builder, reviewer, slogLogger)
	dispatcher := provideDispatcher(reviewJob, cfg, slogLogger)

	srv := server.NewServer(cfg, dispatcher, slogLogger)
	application := app.NewApp(cfg, srv, dispatcher, slogLogger)

	cleanup := func() {}
	return application, cleanup, nil
}
