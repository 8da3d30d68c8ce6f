package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ReviewState is one state of the per-event review pipeline
type ReviewState string

const (
	StateReceived    ReviewState = "received"
	StateVerified    ReviewState = "verified"
	StateDiffFetched ReviewState = "diff_fetched"
	StateAnalyzed    ReviewState = "analyzed"
	StatePosted      ReviewState = "posted"

	// Terminal failure states
	StateRejected ReviewState = "rejected" // untrusted or malformed inbound request
	StateIgnored  ReviewState = "ignored"  // recognized but not review-triggering
	StateFailed   ReviewState = "failed"   // a pipeline step exhausted its options
)

// validTransitions encodes the review state machine. Terminal states
// have no outgoing edges.
var validTransitions = map[ReviewState][]ReviewState{
	StateReceived:    {StateVerified, StateRejected, StateIgnored},
	StateVerified:    {StateDiffFetched, StateFailed},
	StateDiffFetched: {StateAnalyzed, StateFailed},
	StateAnalyzed:    {StatePosted, StateFailed},
}

// IsTerminal reports whether no further transitions are possible
func (s ReviewState) IsTerminal() bool {
	switch s {
	case StatePosted, StateRejected, StateIgnored, StateFailed:
		return true
	default:
		return false
	}
}

// ReviewSession is the record for one in-flight webhook delivery. All
// fields are owned by a single handling; nothing outlives the delivery.
type ReviewSession struct {
	ID        string
	Event     *RawEvent
	PR        *PRMetadata
	State     ReviewState
	Diff      ParsedDiff
	Prompt    *ReviewPrompt
	Result    *ReviewResult
	Err       error
	StartedAt time.Time
}

// NewReviewSession creates a session in the received state
func NewReviewSession(id string, event *RawEvent) *ReviewSession {
	return &ReviewSession{
		ID:        id,
		Event:     event,
		State:     StateReceived,
		StartedAt: time.Now(),
	}
}

// To moves the session to the next state. An illegal transition is a
// programming error and returns a permanent-tagged error without
// changing the current state.
func (s *ReviewSession) To(next ReviewState) error {
	for _, allowed := range validTransitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return goerr.New("illegal state transition",
		goerr.V("from", s.State),
		goerr.V("to", next),
	)
}

// Fail moves the session to a terminal failure state and records the
// cause. Transition legality is deliberately not re-checked: any
// non-terminal state may fail.
func (s *ReviewSession) Fail(state ReviewState, err error) {
	s.State = state
	s.Err = err
}
