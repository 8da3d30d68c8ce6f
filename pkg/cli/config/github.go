package config

import (
	"context"
	"os"

	"github.com/collie-dev/collie/pkg/domain/interfaces"
	githubinfra "github.com/collie-dev/collie/pkg/infra/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration. Either a personal access token
// or GitHub App credentials must be provided.
type GitHub struct {
	WebhookSecret  string
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("COLLIE_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("COLLIE_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("COLLIE_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("COLLIE_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key PEM file",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("COLLIE_GITHUB_PRIVATE_KEY"),
		},
	}
}

// NewClient builds the GitHub client from whichever credential set is
// configured, preferring App credentials when both are present.
func (c *GitHub) NewClient(ctx context.Context) (interfaces.GitHubClient, error) {
	if c.AppID != 0 && c.InstallationID != 0 && c.PrivateKeyPath != "" {
		key, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyPath))
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, key)
	}

	if c.Token != "" {
		return githubinfra.NewClient(c.Token)
	}

	return nil, goerr.New("either github-token or GitHub App credentials are required")
}
