package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/collie-dev/collie/pkg/diff"
	"github.com/collie-dev/collie/pkg/domain/interfaces"
	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/collie-dev/collie/pkg/prompt"
	"github.com/collie-dev/collie/pkg/utils/signature"
	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Config holds the review pipeline settings, constructed once at
// startup and passed in by reference rather than read from globals.
type Config struct {
	WebhookSecret  string
	PromptBudget   int           // max bytes of the formatted prompt
	MaxAttempts    int           // attempts per external call
	InitialBackoff time.Duration // doubled after every failed attempt
	CallTimeout    time.Duration // independent timeout per external call
}

func (c *Config) setDefaults() {
	if c.PromptBudget <= 0 {
		c.PromptBudget = 65536
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 60 * time.Second
	}
}

type reviewUseCase struct {
	github   interfaces.GitHubClient
	analyzer interfaces.Analyzer
	cfg      Config
}

// NewReview creates the review pipeline use case
func NewReview(githubClient interfaces.GitHubClient, analyzer interfaces.Analyzer, cfg Config) interfaces.ReviewUseCase {
	cfg.setDefaults()
	return &reviewUseCase{
		github:   githubClient,
		analyzer: analyzer,
		cfg:      cfg,
	}
}

// Verify runs the inbound transitions of the state machine: signature
// verification over the exact raw body, then payload decoding and
// event classification. No external collaborator is touched. The
// returned session is verified, rejected or ignored.
func (uc *reviewUseCase) Verify(ctx context.Context, event *model.RawEvent) *model.ReviewSession {
	logger := ctxlog.From(ctx)

	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	session := model.NewReviewSession(id, event)

	if !signature.Verify(event.Body, event.Signature, uc.cfg.WebhookSecret) {
		logger.Warn("invalid webhook signature", "session_id", session.ID)
		session.Fail(model.StateRejected, types.ErrInvalidSignature)
		return session
	}

	if event.Type != model.EventTypePullRequest {
		logger.Info("ignoring non-review event",
			"session_id", session.ID,
			"type", event.Type,
		)
		_ = session.To(model.StateIgnored)
		return session
	}

	var prEvent github.PullRequestEvent
	if err := json.Unmarshal(event.Body, &prEvent); err != nil {
		logger.Warn("undecodable pull_request payload", "session_id", session.ID, "error", err)
		session.Fail(model.StateRejected,
			goerr.Wrap(err, "failed to unmarshal pull_request event", goerr.T(types.ErrTagPermanent)))
		return session
	}
	event.Action = prEvent.GetAction()

	if !event.IsReviewable() {
		logger.Info("ignoring pull_request action",
			"session_id", session.ID,
			"action", event.Action,
		)
		_ = session.To(model.StateIgnored)
		return session
	}

	pr, err := prMetadata(&prEvent)
	if err != nil {
		logger.Warn("incomplete pull_request payload", "session_id", session.ID, "error", err)
		session.Fail(model.StateRejected, err)
		return session
	}

	session.PR = pr
	_ = session.To(model.StateVerified)

	logger.Info("webhook event verified",
		"session_id", session.ID,
		"repository", pr.FullName(),
		"pr_number", pr.Number,
		"action", event.Action,
	)
	return session
}

// Review runs fetch, parse, format, analyze and post for a verified
// session. The three external calls are strictly sequential; each
// carries its own timeout and bounded retry. The session always ends
// in a terminal state.
func (uc *reviewUseCase) Review(ctx context.Context, session *model.ReviewSession) error {
	logger := ctxlog.From(ctx).With(
		"session_id", session.ID,
		"repository", session.PR.FullName(),
		"pr_number", session.PR.Number,
	)
	ctx = ctxlog.With(ctx, logger)

	if session.State != model.StateVerified {
		return goerr.New("review requires a verified session",
			goerr.V("state", session.State),
		)
	}

	// Fetch the unified diff
	var rawDiff string
	err := uc.callWithRetry(ctx, "fetch diff", func(ctx context.Context) error {
		var fetchErr error
		rawDiff, fetchErr = uc.github.FetchDiff(ctx, session.PR.Owner, session.PR.Repo, session.PR.Number)
		return fetchErr
	})
	if err != nil {
		session.Fail(model.StateFailed, err)
		return goerr.Wrap(err, "failed to fetch pull request diff")
	}
	_ = session.To(model.StateDiffFetched)

	// Parse and format: pure computation, no I/O, never retried
	parsed, err := diff.Parse(rawDiff)
	if err != nil {
		session.Fail(model.StateFailed, err)
		return goerr.Wrap(err, "failed to parse pull request diff")
	}
	session.Diff = parsed

	reviewPrompt := prompt.Format(parsed, *session.PR, uc.cfg.PromptBudget)
	session.Prompt = &reviewPrompt

	logger.Debug("review prompt prepared",
		"files", len(parsed.Files),
		"prompt_bytes", reviewPrompt.Size(),
		"truncated", reviewPrompt.Truncated,
	)

	// Analyze
	var result *model.ReviewResult
	err = uc.callWithRetry(ctx, "analyze diff", func(ctx context.Context) error {
		var analyzeErr error
		result, analyzeErr = uc.analyzer.Analyze(ctx, &reviewPrompt)
		return analyzeErr
	})
	if err != nil {
		session.Fail(model.StateFailed, err)
		return goerr.Wrap(err, "failed to analyze pull request diff")
	}

	normalizeResult(result)
	session.Result = result
	_ = session.To(model.StateAnalyzed)

	logger.Info("analysis completed",
		"risk", result.Risk,
		"findings", len(result.Findings),
		"requires_changes", result.RequiresChanges,
	)

	// Post the rendered review back to the pull request
	body := renderComment(session.PR, result)
	err = uc.callWithRetry(ctx, "post review", func(ctx context.Context) error {
		return uc.github.PostReview(ctx, session.PR.Owner, session.PR.Repo, session.PR.Number, body)
	})
	if err != nil {
		session.Fail(model.StateFailed, err)
		return goerr.Wrap(err, "failed to post review comment")
	}
	_ = session.To(model.StatePosted)

	logger.Info("review posted",
		"duration_ms", time.Since(session.StartedAt).Milliseconds(),
	)
	return nil
}

// prMetadata extracts the metadata the pipeline needs, rejecting
// payloads that lack required fields
func prMetadata(prEvent *github.PullRequestEvent) (*model.PRMetadata, error) {
	pr := &model.PRMetadata{
		Owner:       prEvent.GetRepo().GetOwner().GetLogin(),
		Repo:        prEvent.GetRepo().GetName(),
		Number:      prEvent.GetPullRequest().GetNumber(),
		Title:       prEvent.GetPullRequest().GetTitle(),
		Description: prEvent.GetPullRequest().GetBody(),
		HeadSHA:     prEvent.GetPullRequest().GetHead().GetSHA(),
		BaseSHA:     prEvent.GetPullRequest().GetBase().GetSHA(),
	}

	if pr.Owner == "" || pr.Repo == "" || pr.Number <= 0 {
		return nil, goerr.New("pull_request payload missing required fields",
			goerr.T(types.ErrTagPermanent),
			goerr.V("owner", pr.Owner),
			goerr.V("repo", pr.Repo),
			goerr.V("number", pr.Number),
		)
	}
	return pr, nil
}

// normalizeResult puts the analysis output into canonical order and
// clamps unknown enum values so rendering stays deterministic
func normalizeResult(result *model.ReviewResult) {
	if !result.Risk.Valid() {
		result.Risk = model.SeverityMedium
	}
	for i := range result.Findings {
		if !result.Findings[i].Severity.Valid() {
			result.Findings[i].Severity = model.SeverityLow
		}
	}
	sortFindings(result.Findings)
}
