package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	controller "github.com/collie-dev/collie/pkg/controller/http"
	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/usecase"
	"github.com/collie-dev/collie/pkg/utils/signature"
)

const testSecret = "test-webhook-secret"

const sampleDiff = "--- a/x.py\n+++ b/x.py\n@@ -1,1 +1,2 @@\n-old\n+new1\n+new2\n"

type stubGitHub struct {
	mu     sync.Mutex
	posted chan string
}

func newStubGitHub() *stubGitHub {
	return &stubGitHub{posted: make(chan string, 1)}
}

func (s *stubGitHub) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	return sampleDiff, nil
}

func (s *stubGitHub) PostReview(ctx context.Context, owner, repo string, number int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case s.posted <- body:
	default:
	}
	return nil
}

type stubAnalyzer struct{}

func (s *stubAnalyzer) Analyze(ctx context.Context, p *model.ReviewPrompt) (*model.ReviewResult, error) {
	return &model.ReviewResult{Summary: "fine", Risk: model.SeverityLow}, nil
}

func prPayload(action string) []byte {
	return fmt.Appendf(nil, `{
		"action": %q,
		"pull_request": {
			"number": 7,
			"title": "Fix login handler",
			"head": {"sha": "abc123"},
			"base": {"sha": "def456"}
		},
		"repository": {
			"name": "api",
			"owner": {"login": "acme"}
		}
	}`, action)
}

func newTestHandler(github *stubGitHub) *controller.WebhookHandler {
	uc := usecase.NewReview(github, &stubAnalyzer{}, usecase.Config{
		WebhookSecret:  testSecret,
		InitialBackoff: time.Millisecond,
	})
	return controller.NewWebhookHandler(uc)
}

func postWebhook(handler *controller.WebhookHandler, eventType string, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", sig)

	w := httptest.NewRecorder()
	handler.Handle(w, req)
	return w
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	tests := []struct {
		name           string
		payload        []byte
		signature      string
		wantStatusCode int
	}{
		{
			name:           "valid signature",
			payload:        prPayload("opened"),
			signature:      "", // generated below
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid signature",
			payload:        prPayload("opened"),
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing signature",
			payload:        prPayload("opened"),
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "signature under wrong secret",
			payload:        prPayload("opened"),
			signature:      signature.Sign(prPayload("opened"), "other-secret"),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := tt.signature
			if sig == "" && tt.wantStatusCode == http.StatusOK {
				sig = signature.Sign(tt.payload, testSecret)
			}

			handler := newTestHandler(newStubGitHub())
			w := postWebhook(handler, "pull_request", tt.payload, sig)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v, body = %s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestWebhookHandler_EventClassification(t *testing.T) {
	tests := []struct {
		name           string
		eventType      string
		payload        []byte
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:           "opened pull request is queued",
			eventType:      "pull_request",
			payload:        prPayload("opened"),
			wantStatusCode: http.StatusOK,
			wantStatus:     "queued",
		},
		{
			name:           "synchronize pull request is queued",
			eventType:      "pull_request",
			payload:        prPayload("synchronize"),
			wantStatusCode: http.StatusOK,
			wantStatus:     "queued",
		},
		{
			name:           "closed pull request is ignored",
			eventType:      "pull_request",
			payload:        prPayload("closed"),
			wantStatusCode: http.StatusOK,
			wantStatus:     "ignored",
		},
		{
			name:           "ping event is ignored",
			eventType:      "ping",
			payload:        []byte(`{"zen": "Design for failure."}`),
			wantStatusCode: http.StatusOK,
			wantStatus:     "ignored",
		},
		{
			name:           "undecodable payload is rejected",
			eventType:      "pull_request",
			payload:        []byte("not json"),
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(newStubGitHub())
			w := postWebhook(handler, tt.eventType, tt.payload, signature.Sign(tt.payload, testSecret))

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v, body = %s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatus != "" {
				var response map[string]string
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Errorf("Failed to decode response: %v", err)
				}
				if response["status"] != tt.wantStatus {
					t.Errorf("Response status = %v, want %v", response["status"], tt.wantStatus)
				}
			}
		})
	}
}

// A queued delivery must complete the review in the background after
// the handler has already responded.
func TestWebhookHandler_BackgroundReview(t *testing.T) {
	github := newStubGitHub()
	handler := newTestHandler(github)

	payload := prPayload("opened")
	w := postWebhook(handler, "pull_request", payload, signature.Sign(payload, testSecret))

	if w.Code != http.StatusOK {
		t.Fatalf("Handle() status = %v, want %v, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	select {
	case body := <-github.posted:
		if body == "" {
			t.Error("posted review body is empty")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("review was never posted")
	}
}

func TestWebhookHandler_Integration(t *testing.T) {
	ctx := context.Background()
	github := newStubGitHub()

	uc := usecase.NewReview(github, &stubAnalyzer{}, usecase.Config{
		WebhookSecret:  testSecret,
		InitialBackoff: time.Millisecond,
	})

	server, err := controller.NewServer(ctx, uc, controller.WithAddr("localhost:0"))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payload := prPayload("opened")

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/hooks/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-GitHub-Delivery", "integration-test")
	req.Header.Set("X-Hub-Signature-256", signature.Sign(payload, testSecret))

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	select {
	case <-github.posted:
	case <-time.After(5 * time.Second):
		t.Fatal("review was never posted")
	}
}
