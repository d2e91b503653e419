package handlers

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// InlineMarkup is the inline keyboard attached to a message
type InlineMarkup = tgbotapi.InlineKeyboardMarkup

// BotAPI is the part of the telegram client the handlers talk to
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ProjectUsecase defines the subset of project operations needed by Telegram handlers
type ProjectUsecase interface {
	Registry() *workflow.Registry
	CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error)
	GetProject(ctx context.Context, projectID string) (*entity.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	StartConversation(ctx context.Context, projectID string) (*entity.ChatMessage, error)
	SendMessage(ctx context.Context, projectID, text string, sink func(string)) (*entity.ChatTurn, error)
	ResolveSuggestion(ctx context.Context, projectID, suggestionID string, decision entity.SuggestionDecision) (*entity.ResolveSuggestionResponse, error)
	Report(ctx context.Context, projectID string, format entity.ReportFormat) (*entity.ReportFile, error)
	ReportFormats() []entity.ReportFormat
}
