package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v73/github"

	"github.com/mkraev/diffsentry/internal/core"
)

const checkRunName = "diffsentry review"

// StatusReporter publishes review progress to the GitHub Checks API so a PR
// shows an in-progress indicator while the model calls run. It is used by
// webhook server mode; the single-shot CLI skips check runs entirely.
type StatusReporter struct {
	client  Client
	logger  *slog.Logger
	headSHA string
}

// NewStatusReporter creates a reporter bound to one PR head commit.
func NewStatusReporter(client Client, headSHA string, logger *slog.Logger) *StatusReporter {
	return &StatusReporter{client: client, headSHA: headSHA, logger: logger}
}

// InProgress creates a check run in the in_progress state and returns its ID.
func (s *StatusReporter) InProgress(ctx context.Context, ref core.PullRequestRef, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    checkRunName,
		HeadSHA: s.headSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   github.Ptr("Review in progress"),
			Summary: github.Ptr(summary),
		},
	}

	run, err := s.client.CreateCheckRun(ctx, ref.Owner, ref.Repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return run.GetID(), nil
}

// Completed finalizes the check run with the given conclusion
// ("success" or "failure") and summary text.
func (s *StatusReporter) Completed(ctx context.Context, ref core.PullRequestRef, checkRunID int64, conclusion, title, summary string) error {
	opts := github.UpdateCheckRunOptions{
		Name:       checkRunName,
		Status:     github.Ptr("completed"),
		Conclusion: github.Ptr(conclusion),
		Output: &github.CheckRunOutput{
			Title:   github.Ptr(title),
			Summary: github.Ptr(summary),
		},
	}

	if _, err := s.client.UpdateCheckRun(ctx, ref.Owner, ref.Repo, checkRunID, opts); err != nil {
		return fmt.Errorf("failed to update check run %d: %w", checkRunID, err)
	}
	return nil
}

// Fail marks the check run failed and logs, swallowing the update error so it
// never masks the original failure being reported.
func (s *StatusReporter) Fail(ctx context.Context, ref core.PullRequestRef, checkRunID int64, message string) {
	if err := s.Completed(ctx, ref, checkRunID, "failure", "Review failed", message); err != nil {
		s.logger.Error("failed to update failure status", "pr", ref.String(), "error", err)
	}
}
