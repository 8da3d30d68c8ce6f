package interfaces

import "context"

// GitHubClient defines the repository-hosting operations the review
// pipeline depends on. Implementations map API failures onto the
// error taxonomy in pkg/domain/types so callers can branch on tags.
type GitHubClient interface {
	// FetchDiff returns the raw unified diff text of a pull request
	FetchDiff(ctx context.Context, owner, repo string, number int) (string, error)

	// PostReview posts a review comment (markdown body) on a pull request
	PostReview(ctx context.Context, owner, repo string, number int, body string) error
}
