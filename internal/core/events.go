package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ReviewEvent represents a simplified, internal view of a request to review a
// pull request, whether it arrived via webhook or the CLI.
type ReviewEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string
	PRNumber     int
	PRTitle      string

	Commenter      string
	InstallationID int64
}

// Ref returns the pull request reference carried by the event.
func (e *ReviewEvent) Ref() PullRequestRef {
	return PullRequestRef{Owner: e.RepoOwner, Repo: e.RepoName, Number: e.PRNumber}
}

// EventFromIssueComment transforms a raw GitHub IssueCommentEvent into the
// application's internal ReviewEvent. It acts as an anti-corruption layer,
// ensuring the incoming webhook payload is valid and contains all necessary
// data before a job is dispatched. Only "/review" commands on pull requests
// are accepted.
func EventFromIssueComment(event *github.IssueCommentEvent) (*ReviewEvent, error) {
	if !event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("comment is not on a pull request")
	}

	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), "/review") {
		return nil, fmt.Errorf("comment is not a review command")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	prNumber := event.GetIssue().GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if event.GetComment().GetUser() == nil || event.GetComment().GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &ReviewEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		PRNumber:       prNumber,
		PRTitle:        event.GetIssue().GetTitle(),
		Commenter:      event.GetComment().GetUser().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}
