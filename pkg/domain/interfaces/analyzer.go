package interfaces

import (
	"context"

	"github.com/collie-dev/collie/pkg/domain/model"
)

// Analyzer sends a bounded review prompt to the language-model service
// and returns its structured result
type Analyzer interface {
	Analyze(ctx context.Context, prompt *model.ReviewPrompt) (*model.ReviewResult, error)
}
