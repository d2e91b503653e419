package project

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/integration/llm"
)

type CapabilityFactory interface {
	ServerCredentials() entity.Credentials
	NewService(ctx context.Context, creds entity.Credentials) (*llm.Service, error)
}

// Notifier pushes project lifecycle events to webhooks
type Notifier interface {
	SendStageCompleted(ctx context.Context, project *entity.Project, data *entity.CallbackStageCompletedData)
	SendSuggestionResolved(ctx context.Context, project *entity.Project, suggestion *entity.FeatureSuggestion)
	SendError(ctx context.Context, project *entity.Project, message string, details map[string]any)
}
