package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypePing        WebhookEventType = "ping"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// Reviewable pull_request actions
const (
	ActionOpened      = "opened"
	ActionSynchronize = "synchronize"
	ActionReopened    = "reopened"
)

// RawEvent represents a webhook delivery exactly as it arrived.
// Body holds the raw payload bytes: signature verification must run
// over the bytes GitHub sent, never a re-serialized form.
type RawEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g. opened, synchronize)
	Signature  string           // Raw X-Hub-Signature-256 header value
	Body       []byte           // Raw JSON payload
	ReceivedAt time.Time        // Time when the event was received
}

// IsReviewable checks if the event should trigger a review
func (e *RawEvent) IsReviewable() bool {
	if e.Type != EventTypePullRequest {
		return false
	}
	switch e.Action {
	case ActionOpened, ActionSynchronize, ActionReopened:
		return true
	default:
		return false
	}
}

// PRMetadata holds the pull request information needed for a review
type PRMetadata struct {
	Owner       string
	Repo        string
	Number      int
	Title       string
	Description string
	HeadSHA     string
	BaseSHA     string
}

// FullName returns the owner/repo form of the repository name
func (m *PRMetadata) FullName() string {
	return m.Owner + "/" + m.Repo
}
