package interfaces

import (
	"context"

	"github.com/collie-dev/collie/pkg/domain/model"
)

// ReviewUseCase drives the per-event review pipeline
type ReviewUseCase interface {
	// Verify runs the inbound transitions: signature check and event
	// classification. The returned session is either verified or in a
	// terminal state (rejected / ignored).
	Verify(ctx context.Context, event *model.RawEvent) *model.ReviewSession

	// Review runs fetch, parse, format, analyze and post for a
	// verified session. The session always ends in a terminal state;
	// the returned error reports why a session failed.
	Review(ctx context.Context, session *model.ReviewSession) error
}
