package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/collie-dev/collie/pkg/domain/interfaces"
	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/collie-dev/collie/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// WebhookHandler handles GitHub webhook deliveries
type WebhookHandler struct {
	reviewUC interfaces.ReviewUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(reviewUC interfaces.ReviewUseCase) *WebhookHandler {
	return &WebhookHandler{
		reviewUC: reviewUC,
	}
}

// Handle processes webhook requests. Verification runs synchronously
// so the caller gets an accurate acknowledgement; the review pipeline
// itself runs detached, so the response never waits on the external
// collaborators and a dropped connection cannot abort them.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Signature verification must run over the exact bytes received
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read request body", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event := &model.RawEvent{
		ID:         r.Header.Get("X-GitHub-Delivery"),
		Type:       model.WebhookEventType(r.Header.Get("X-GitHub-Event")),
		Signature:  r.Header.Get("X-Hub-Signature-256"),
		Body:       body,
		ReceivedAt: time.Now(),
	}

	session := h.reviewUC.Verify(ctx, event)

	switch session.State {
	case model.StateRejected:
		status := http.StatusBadRequest
		if errors.Is(session.Err, types.ErrInvalidSignature) {
			status = http.StatusUnauthorized
		}
		writeError(ctx, w, session.Err, status)

	case model.StateIgnored:
		writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ignored"})

	case model.StateVerified:
		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.reviewUC.Review(ctx, session)
		})
		writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "queued"})

	default:
		logger.Error("unexpected session state after verification", "state", session.State)
		writeError(ctx, w, goerr.New("internal error"), http.StatusInternalServerError)
	}
}
