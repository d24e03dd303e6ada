// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v73/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/mkraev/diffsentry/internal/core"
)

// Client defines the set of GitHub operations the review pipeline needs:
// fetching a pull request's changed files and publishing results. Errors are
// mapped onto the core taxonomy so callers never inspect HTTP status codes.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps an already-configured go-github client.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a GitHub client authenticated with a personal access
// token, with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github with oauth2 token injection
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimited := github_ratelimit.NewClient(cacheTransport)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, rateLimited), ts)

	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, mapAPIError(err)
	}
	return pr, nil
}

// ListChangedFiles retrieves the files modified in a pull request, in the
// order GitHub lists them. It paginates automatically; the API returns at
// most 100 files per page. Each file carries its patch text and a language
// tag inferred from the extension.
func (g *gitHubClient) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error) {
	var allFiles []core.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, mapAPIError(err)
		}

		for _, file := range files {
			allFiles = append(allFiles, core.ChangedFile{
				Path:      file.GetFilename(),
				Language:  core.LanguageForPath(file.GetFilename()),
				Patch:     file.GetPatch(),
				Additions: file.GetAdditions(),
				Deletions: file.GetDeletions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// CreateComment posts a new comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return mapAPIError(err)
	}
	return nil
}

// CreateCheckRun creates a new check run.
func (g *gitHubClient) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.CreateCheckRun(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to create check run", "owner", owner, "repo", repo, "error", err)
		return nil, mapAPIError(err)
	}
	return checkRun, nil
}

// UpdateCheckRun updates an existing check run.
func (g *gitHubClient) UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.UpdateCheckRun(ctx, owner, repo, checkRunID, opts)
	if err != nil {
		g.logger.Error("failed to update check run", "owner", owner, "repo", repo, "checkRunID", checkRunID, "error", err)
		return nil, mapAPIError(err)
	}
	return checkRun, nil
}

// mapAPIError translates go-github errors into the core error taxonomy.
func mapAPIError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %v", core.ErrRateLimit, err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", core.ErrRateLimit, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", core.ErrAuth, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", core.ErrNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", core.ErrRateLimit, err)
		}
	}

	return fmt.Errorf("%w: %v", core.ErrTransport, err)
}
