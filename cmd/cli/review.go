package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
	"github.com/mkraev/diffsentry/internal/github"
	"github.com/mkraev/diffsentry/internal/llm"
	"github.com/mkraev/diffsentry/internal/logger"
	"github.com/mkraev/diffsentry/internal/orchestrator"
	"github.com/mkraev/diffsentry/internal/prompt"
	"github.com/mkraev/diffsentry/internal/report"
)

var (
	verbose  bool
	dryRun   bool
	repoFlag string
	prFlag   int
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Review a GitHub pull request and post the findings as a comment",
	Long: `Review a GitHub pull request and post the findings as a comment.

The review command fetches the PR's changed files, applies the file and patch
size limits, sends each eligible diff to the configured model, and publishes
one aggregated comment. With --dry-run the report is rendered to the terminal
instead of being posted.

Examples:
  diffsentry review https://github.com/owner/repo/pull/123
  diffsentry review --repo owner/repo --pr 123
  diffsentry review --dry-run https://github.com/owner/repo/pull/123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the report locally instead of posting a comment")
	reviewCmd.Flags().StringVar(&repoFlag, "repo", "", `Repository in "owner/repo" form (alternative to the PR URL)`)
	reviewCmd.Flags().IntVar(&prFlag, "pr", 0, "Pull request number (used with --repo)")
	rootCmd.AddCommand(reviewCmd)
}

// resolveRef turns the positional URL or the --repo/--pr flag pair into a
// pull request reference.
func resolveRef(args []string) (core.PullRequestRef, error) {
	if len(args) == 1 {
		ref, err := github.ParsePullRequestURL(args[0])
		if err != nil {
			return core.PullRequestRef{}, fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
		}
		return ref, nil
	}

	owner, repo, ok := strings.Cut(repoFlag, "/")
	if !ok || owner == "" || repo == "" {
		return core.PullRequestRef{}, fmt.Errorf(`--repo must be in "owner/repo" form, got %q`, repoFlag)
	}
	if prFlag <= 0 {
		return core.PullRequestRef{}, fmt.Errorf("--pr must be a positive pull request number, got %d", prFlag)
	}
	return core.PullRequestRef{Owner: owner, Repo: repo, Number: prFlag}, nil
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	overallStart := time.Now()

	ref, err := resolveRef(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.GitHub.RequireToken(); err != nil {
		return fmt.Errorf("%w\n\nTip: set DS_GITHUB_TOKEN or pass --github-token", err)
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	titleColor.Println("🛡️  diffsentry - PR Review")
	dimColor.Printf("   Target: %s\n\n", ref.String())

	// Optional repo-level overlay from the working directory.
	rules, err := config.LoadRepoRules(".")
	if err != nil && !errors.Is(err, config.ErrRulesNotFound) {
		return fmt.Errorf("failed to load .diffsentry.yml: %w", err)
	}
	reviewCfg := config.MergeRepoRules(cfg.Review, rules)
	if verbose && !errors.Is(err, config.ErrRulesNotFound) {
		dimColor.Println("   Loaded .diffsentry.yml overlay")
	}

	model, err := llm.NewModel(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create model backend: %w\n\nTip: check that the LLM service is running", err)
	}
	reviewer := llm.NewClient(model, cfg.LLM, log)

	mgr, err := prompt.NewManager()
	if err != nil {
		return fmt.Errorf("failed to load prompt templates: %w", err)
	}
	builder := prompt.NewBuilder(mgr, cfg.LLM.Provider, reviewCfg.Categories, rules.CustomInstructions)

	ghClient := github.NewPATClient(ctx, cfg.GitHub.Token, log)
	orch := orchestrator.New(ghClient, builder, reviewer, reviewCfg, log)

	if dryRun {
		rep, err := orch.Review(ctx, ref)
		if err != nil {
			return fmt.Errorf("review aborted: %w", err)
		}
		if verbose {
			dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
		}
		return renderReport(rep)
	}

	fmt.Println("Reviewing changed files...")
	outcome, err := orch.Run(ctx, ref)
	if err != nil {
		return fmt.Errorf("review aborted: %w", err)
	}

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	printSummary(outcome.Report)
	if outcome.PublishErr != nil {
		warnColor.Printf("\n⚠️  The comment could not be posted: %v\n", outcome.PublishErr)
		warnColor.Println("   The report above is the full result of the run.")
		return nil
	}

	successColor.Printf("\n✅ Review comment posted to %s\n", ref.String())
	return nil
}

// renderReport pretty-prints the Markdown report in the terminal.
func renderReport(rep core.AggregatedReport) error {
	md := report.Markdown(rep)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Plain Markdown still beats no output.
		fmt.Println(md)
		return nil
	}

	out, err := renderer.Render(md)
	if err != nil {
		fmt.Println(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func printSummary(rep core.AggregatedReport) {
	separator := strings.Repeat("═", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("📋 REVIEW SUMMARY")
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Printf("Files reviewed: %d   Failed: %d   Skipped: %d\n",
		rep.Reviewed, rep.Failed, len(rep.Excluded))

	if rep.TotalFindings == 0 {
		fmt.Println()
		successColor.Println("✅ No issues found!")
		return
	}

	fmt.Println()
	warnColor.Printf("💡 FINDINGS (%d)\n", rep.TotalFindings)

	for _, result := range rep.Results {
		for _, f := range result.Findings {
			fmt.Println()
			printSeverityBadge(f.Severity)
			boldColor.Printf(" %s", f.File)
			if f.Line > 0 {
				dimColor.Printf(":%d", f.Line)
			}
			fmt.Println()
			dimColor.Printf("   Category: %s\n", f.Category)
			infoColor.Printf("   %s\n", strings.ReplaceAll(f.Message, "\n", "\n   "))
			if f.Suggestion != "" {
				dimColor.Printf("   Suggestion: %s\n", strings.ReplaceAll(f.Suggestion, "\n", "\n   "))
			}
		}
	}
	fmt.Println()
}

func printSeverityBadge(severity core.Severity) {
	switch severity {
	case core.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", severity)
	case core.SeverityHigh:
		color.New(color.BgHiRed, color.FgWhite).Printf(" %s ", severity)
	case core.SeverityMedium:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", severity)
	case core.SeverityLow:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", severity)
	}
}
