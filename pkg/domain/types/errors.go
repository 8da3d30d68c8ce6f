package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so the review pipeline can decide,
// without inspecting collaborator internals, whether a step may be
// retried.
var (
	// ErrTagTransient marks errors worth retrying: network failures,
	// 5xx responses, rate limits, and per-call timeouts.
	ErrTagTransient = goerr.NewTag("transient")

	// ErrTagPermanent marks errors that will not change on retry,
	// e.g. 4xx responses other than rate limits.
	ErrTagPermanent = goerr.NewTag("permanent")

	// ErrTagMalformedDiff marks diff text the parser cannot make sense
	// of. Retrying will not fix malformed input.
	ErrTagMalformedDiff = goerr.NewTag("malformed_diff")
)

// Sentinel errors for enumerated collaborator failures
var (
	ErrNotFound    = goerr.New("resource not found", goerr.T(ErrTagPermanent))
	ErrForbidden   = goerr.New("access forbidden", goerr.T(ErrTagPermanent))
	ErrRateLimited = goerr.New("rate limited", goerr.T(ErrTagTransient))

	// ErrInvalidSignature rejects an inbound delivery whose signature
	// header does not match the raw body under the shared secret
	ErrInvalidSignature = goerr.New("invalid webhook signature", goerr.T(ErrTagPermanent))
)

// IsRetryable reports whether err may succeed on a subsequent attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return goerr.HasTag(err, ErrTagTransient)
}
