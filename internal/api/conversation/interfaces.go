package conversation

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
)

type ConversationUsecase interface {
	StartConversation(ctx context.Context, projectID string) (*entity.ChatMessage, error)
	SendMessage(ctx context.Context, projectID, text string, sink func(string)) (*entity.ChatTurn, error)
	ResolveSuggestion(ctx context.Context, projectID, suggestionID string, decision entity.SuggestionDecision) (*entity.ResolveSuggestionResponse, error)
	History(ctx context.Context, projectID, stage string) (*entity.HistoryResponse, error)
	Knowledge(ctx context.Context, projectID, stage string) (*entity.KnowledgeResponse, error)
	Context(ctx context.Context, projectID string) (*entity.ContextResponse, error)
}

type StageRegistry interface {
	Stages() []entity.StageConfig
}
