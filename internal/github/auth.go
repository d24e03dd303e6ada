package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
)

// NewInstallationClient creates a GitHub client authenticated as a specific
// App installation. Used by webhook server mode; the CLI authenticates with
// a personal access token instead.
func NewInstallationClient(ctx context.Context, cfg config.GitHubConfig, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read private key from %s: %v", core.ErrAuth, cfg.PrivateKeyPath, err)
	}

	// The apps transport talks to the GitHub App API to mint installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GitHub App transport: %v", core.ErrAuth, err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create installation token for installation %d: %v", core.ErrAuth, installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("%w: received an empty installation token", core.ErrAuth)
	}
	logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)

	return NewClient(github.NewClient(tc), logger), nil
}
