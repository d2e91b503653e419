package conversation

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
)

// Capability is the hosted LLM surface the engine relies on
type Capability interface {
	Configured() bool
	Advise(ctx context.Context, businessContext, question string) (string, error)
	AdviseStream(ctx context.Context, businessContext, question string, sink func(string)) (string, error)
	ExtractInsights(ctx context.Context, conversation string) (*entity.BusinessInsights, error)
	SuggestFeatures(ctx context.Context, prompt entity.SuggestionPrompt) ([]entity.SuggestionDraft, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}
