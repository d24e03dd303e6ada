// Package orchestrator drives a full review run: fetch the pull request's
// changed files, apply the review policy, fan the included files out to the
// model with bounded concurrency, aggregate the results in input order, and
// publish the report back to the pull request.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
	"github.com/mkraev/diffsentry/internal/github"
	"github.com/mkraev/diffsentry/internal/policy"
	"github.com/mkraev/diffsentry/internal/prompt"
	"github.com/mkraev/diffsentry/internal/report"
)

// Reviewer reviews one file's rendered prompt. Implementations report
// failures through the result's failure marker, never through a returned
// error, so a single bad file cannot abort the run.
type Reviewer interface {
	Review(ctx context.Context, req core.ReviewRequest) core.FileReviewResult
}

// Status is the terminal state of a review run.
type Status string

const (
	// StatusCompleted means a report was produced. Individual files may
	// still have failed; the report records them.
	StatusCompleted Status = "completed"
	// StatusAborted means the run stopped before producing a report, e.g.
	// the diff could not be fetched or credentials were rejected.
	StatusAborted Status = "aborted"
)

// Outcome is the result of one orchestrated run.
type Outcome struct {
	Status Status
	Report core.AggregatedReport
	// PublishErr records a failed comment publication. The run still counts
	// as completed: the report exists and is returned to the caller.
	PublishErr error
}

// Orchestrator wires the pipeline stages together. It holds no per-run
// state, so one instance serves concurrent runs.
type Orchestrator struct {
	gh       github.Client
	builder  *prompt.Builder
	reviewer Reviewer
	cfg      config.ReviewConfig
	logger   *slog.Logger
}

func New(gh github.Client, builder *prompt.Builder, reviewer Reviewer, cfg config.ReviewConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gh:       gh,
		builder:  builder,
		reviewer: reviewer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes the full pipeline for one pull request and publishes the
// aggregated report as a PR comment. A publish failure does not discard the
// report; it is recorded on the outcome and the run completes.
func (o *Orchestrator) Run(ctx context.Context, ref core.PullRequestRef) (*Outcome, error) {
	rep, err := o.Review(ctx, ref)
	if err != nil {
		return &Outcome{Status: StatusAborted}, err
	}

	outcome := &Outcome{Status: StatusCompleted, Report: rep}

	body := report.Markdown(rep)
	if err := o.gh.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, body); err != nil {
		o.logger.Error("failed to publish review comment", "pr", ref.String(), "error", err)
		outcome.PublishErr = err
	}
	return outcome, nil
}

// Review runs the pipeline up to aggregation without publishing. It returns
// an error only for abort conditions: the changed-file listing failed, a
// fatal credential error surfaced mid-run, or the context was cancelled.
func (o *Orchestrator) Review(ctx context.Context, ref core.PullRequestRef) (core.AggregatedReport, error) {
	files, err := o.gh.ListChangedFiles(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return core.AggregatedReport{}, fmt.Errorf("failed to fetch changed files for %s: %w", ref.String(), err)
	}
	o.logger.Info("fetched changed files", "pr", ref.String(), "files", len(files))

	decisions := policy.Evaluate(files, o.cfg)

	var included []core.PolicyDecision
	for _, d := range decisions {
		if d.Included {
			included = append(included, d)
		}
	}

	results, err := o.reviewAll(ctx, included)
	if err != nil {
		return core.AggregatedReport{}, err
	}

	rep := report.Aggregate(ref, decisions, results)
	o.logger.Info("review run finished",
		"pr", ref.String(),
		"reviewed", rep.Reviewed,
		"failed", rep.Failed,
		"excluded", len(rep.Excluded),
		"findings", rep.TotalFindings,
	)
	return rep, nil
}

// reviewAll fans the included decisions out to the model with at most
// cfg.Concurrency calls in flight. Each worker writes into its own slot of
// the results slice, so the output order matches the decision order no
// matter when individual calls complete. A fatal error (bad credentials)
// cancels the remaining calls and aborts the run; everything else stays
// isolated to its file.
func (o *Orchestrator) reviewAll(ctx context.Context, included []core.PolicyDecision) ([]core.FileReviewResult, error) {
	results := make([]core.FileReviewResult, len(included))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)

	for i, decision := range included {
		g.Go(func() error {
			req, err := o.builder.Build(decision)
			if err != nil {
				results[i] = core.FileReviewResult{File: decision.File, Err: err}
				return nil
			}

			result := o.reviewer.Review(gctx, req)
			results[i] = result

			if core.IsFatal(result.Err) {
				return fmt.Errorf("aborting run on fatal error for %s: %w", decision.File.Path, result.Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("review run cancelled: %w", err)
	}
	return results, nil
}
