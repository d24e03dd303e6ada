package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
	"github.com/mkraev/diffsentry/internal/github"
	"github.com/mkraev/diffsentry/internal/orchestrator"
	"github.com/mkraev/diffsentry/internal/prompt"
)

// jobTimeout caps one full review run, covering every model call.
const jobTimeout = 15 * time.Minute

// ReviewJob executes one pull request review triggered by a webhook event.
// The prompt builder and model client are shared across jobs; the GitHub
// client is created per event because each installation needs its own token.
type ReviewJob struct {
	cfg      *config.Config
	builder  *prompt.Builder
	reviewer orchestrator.Reviewer
	logger   *slog.Logger
}

// NewReviewJob creates a new ReviewJob.
func NewReviewJob(cfg *config.Config, builder *prompt.Builder, reviewer orchestrator.Reviewer, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if builder == nil {
		panic("prompt builder cannot be nil")
	}
	if reviewer == nil {
		panic("reviewer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{cfg: cfg, builder: builder, reviewer: reviewer, logger: logger}
}

// Run reviews the pull request named by the event and reports progress
// through the GitHub Checks API.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("invalid review event", "error", err)
		return fmt.Errorf("invalid review event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	ref := event.Ref()
	j.logger.Info("starting review job", "pr", ref.String(), "commenter", event.Commenter)

	ghClient, err := github.NewInstallationClient(ctx, j.cfg.GitHub, event.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	pr, err := ghClient.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	headSHA := pr.GetHead().GetSHA()
	if headSHA == "" {
		return fmt.Errorf("PR %s has no valid head SHA", ref.String())
	}

	reporter := github.NewStatusReporter(ghClient, headSHA, j.logger)
	checkRunID, err := reporter.InProgress(ctx, ref, "Reviewing changed files...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	orch := orchestrator.New(ghClient, j.builder, j.reviewer, j.cfg.Review, j.logger)
	outcome, err := orch.Run(ctx, ref)
	if err != nil {
		reporter.Fail(ctx, ref, checkRunID, "Review aborted: "+err.Error())
		return fmt.Errorf("review run aborted: %w", err)
	}

	if outcome.PublishErr != nil {
		reporter.Fail(ctx, ref, checkRunID, "Review finished but the comment could not be posted")
		return fmt.Errorf("failed to publish review comment: %w", outcome.PublishErr)
	}

	summary := fmt.Sprintf("Reviewed %d file(s): %d finding(s), %d failed, %d skipped.",
		outcome.Report.Reviewed,
		outcome.Report.TotalFindings,
		outcome.Report.Failed,
		len(outcome.Report.Excluded),
	)
	if err := reporter.Completed(ctx, ref, checkRunID, "success", "Review complete", summary); err != nil {
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.logger.Info("review job completed", "pr", ref.String(), "findings", outcome.Report.TotalFindings)
	return nil
}

// validateEvent ensures the event carries everything a run needs before any
// API call is made.
func validateEvent(event *core.ReviewEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
