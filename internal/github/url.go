package github

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkraev/diffsentry/internal/core"
)

var prURLRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL extracts a PullRequestRef from a GitHub PR URL.
// Supported format: https://github.com/{owner}/{repo}/pull/{number}
func ParsePullRequestURL(url string) (core.PullRequestRef, error) {
	url = strings.TrimSuffix(url, "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return core.PullRequestRef{}, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil {
		return core.PullRequestRef{}, fmt.Errorf("invalid PR number %q: %w", matches[3], err)
	}

	return core.PullRequestRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}
