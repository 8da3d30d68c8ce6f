// Package github implements the repository-hosting collaborator on
// top of the GitHub REST API.
package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/collie-dev/collie/pkg/domain/interfaces"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client authenticated with a personal
// access token
func NewClient(token string) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("github token is required")
	}
	return &client{
		githubClient: github.NewClient(nil).WithAuthToken(token),
	}, nil
}

// NewAppClient creates a GitHub client authenticated as a GitHub App
// installation
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}
	return &client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
	}, nil
}

// FetchDiff returns the raw unified diff of a pull request
func (c *client) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	raw, resp, err := c.githubClient.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		return "", mapAPIError(err, resp, "failed to fetch pull request diff", owner, repo, number)
	}
	return raw, nil
}

// PostReview posts a non-blocking review comment on a pull request
func (c *client) PostReview(ctx context.Context, owner, repo string, number int, body string) error {
	review := &github.PullRequestReviewRequest{
		Body:  github.Ptr(body),
		Event: github.Ptr("COMMENT"),
	}
	_, resp, err := c.githubClient.PullRequests.CreateReview(ctx, owner, repo, number, review)
	if err != nil {
		return mapAPIError(err, resp, "failed to post pull request review", owner, repo, number)
	}
	return nil
}

// mapAPIError converts GitHub API failures onto the error taxonomy:
// rate limits are transient, other 4xx are permanent, everything else
// (network errors, 5xx) is transient.
func mapAPIError(err error, resp *github.Response, msg, owner, repo string, number int) error {
	vars := []goerr.Option{
		goerr.V("owner", owner),
		goerr.V("repo", repo),
		goerr.V("number", number),
	}

	switch err.(type) {
	case *github.RateLimitError, *github.AbuseRateLimitError:
		return goerr.Wrap(types.ErrRateLimited, msg, append(vars, goerr.V("cause", err.Error()))...)
	}

	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return goerr.Wrap(types.ErrNotFound, msg, append(vars, goerr.V("cause", err.Error()))...)
		case resp.StatusCode == http.StatusForbidden:
			return goerr.Wrap(types.ErrForbidden, msg, append(vars, goerr.V("cause", err.Error()))...)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return goerr.Wrap(err, msg, append(vars, goerr.T(types.ErrTagPermanent), goerr.V("status", resp.StatusCode))...)
		}
	}

	return goerr.Wrap(err, msg, append(vars, goerr.T(types.ErrTagTransient))...)
}
