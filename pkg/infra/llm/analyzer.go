// Package llm implements the analysis collaborator on top of a
// language model accessed through gollem.
package llm

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/collie-dev/collie/pkg/domain/interfaces"
	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
)

//go:embed prompts/review_system.md
var systemPrompt string

type analyzer struct {
	llmClient gollem.LLMClient
}

// NewOpenAIAnalyzer creates an analyzer backed by an OpenAI model
func NewOpenAIAnalyzer(ctx context.Context, apiKey, modelName string) (interfaces.Analyzer, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	llmClient, err := openai.New(ctx, apiKey, openai.WithModel(modelName))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OpenAI client")
	}

	return &analyzer{llmClient: llmClient}, nil
}

// NewAnalyzer wraps an existing gollem client; used by tests
func NewAnalyzer(llmClient gollem.LLMClient) interfaces.Analyzer {
	return &analyzer{llmClient: llmClient}
}

// Analyze sends the prompt to the model and decodes its structured
// review. Model and session failures are transient; a response that
// is not the expected JSON shape is permanent (retrying the identical
// prompt is the orchestrator's job only for transport-level failures).
func (a *analyzer) Analyze(ctx context.Context, prompt *model.ReviewPrompt) (*model.ReviewResult, error) {
	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session", goerr.T(types.ErrTagTransient))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.Text))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate review", goerr.T(types.ErrTagTransient))
	}

	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty response from LLM", goerr.T(types.ErrTagTransient))
	}

	var result model.ReviewResult
	if err := json.Unmarshal([]byte(resp.Texts[0]), &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response",
			goerr.T(types.ErrTagPermanent),
			goerr.V("response", resp.Texts[0]),
		)
	}

	return &result, nil
}
