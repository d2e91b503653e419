package llm

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
)

// Purpose labels a request for logging and for the mock connector
type Purpose string

const (
	PurposeChat       Purpose = "chat"
	PurposeAdvice     Purpose = "advice"
	PurposeExtraction Purpose = "extraction"
	PurposeSuggestion Purpose = "suggestion"
	PurposeSummary    Purpose = "summary"
)

// Request is a provider-neutral completion request.
// System messages are folded into System before reaching a connector.
type Request struct {
	Purpose     Purpose
	System      string
	Messages    []entity.LLMMessage
	Temperature float64
	MaxTokens   int
}

// Connector adapts one provider SDK
type Connector interface {
	Provider() entity.Provider
	Model() string
	Complete(ctx context.Context, req *Request) (string, error)
	// Stream calls onDelta for each non-empty text piece in order
	Stream(ctx context.Context, req *Request, onDelta func(string)) error
}
