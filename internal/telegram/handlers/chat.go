package handlers

import (
	"context"
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/telegram/keyboard"
	"github.com/futig/launchpad-backend/internal/telegram/render"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// ChatHandler forwards free text to the conversation of the active stage
type ChatHandler struct {
	BaseHandler
	api          BotAPI
	stateManager *state.Manager
	projectUC    ProjectUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewChatHandler creates a handler for the conversation step
func NewChatHandler(
	api BotAPI,
	stateManager *state.Manager,
	projectUC ProjectUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateChatting,
			messageSender: NewMessageSender(api, logger),
		},
		api:          api,
		stateManager: stateManager,
		projectUC:    projectUC,
		keyboard:     keyboard,
		logger:       logger,
	}
}

// Handle implements Handler
func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("get telegram session: %w", err)
	}
	if session.ProjectID == "" {
		h.sendMessage(msg.ChatID, render.MsgNoProject, h.keyboard.StartKeyboard())
		return nil
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	turn, err := h.projectUC.SendMessage(ctx, session.ProjectID, msg.Text, nil)
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.deliverTurn(ctx, msg.ChatID, turn)
	return nil
}

// deliverTurn posts the reply and every follow-up a turn produced
func (h *ChatHandler) deliverTurn(ctx context.Context, chatID int64, turn *entity.ChatTurn) {
	var markup interface{}
	if turn.Message.Metadata != nil {
		if kb, ok := h.keyboard.SuggestionsKeyboard(turn.Message.Metadata.Suggestions); ok {
			markup = kb
		}
	}
	if _, err := h.messageSender.SendCritical(chatID, turn.Message.Content, markup); err != nil {
		h.HandleError(ctx, chatID, err)
		return
	}

	if turn.StageSummary != nil {
		h.sendMessage(chatID, turn.StageSummary.Content, nil)
	}

	registry := h.projectUC.Registry()
	switch {
	case turn.AdvancedTo != "":
		finished, _ := registry.PreviousStage(turn.AdvancedTo)
		h.sendMessage(chatID, render.RenderStageCompleted(registry.StageConfig(finished), registry.StageConfig(turn.AdvancedTo)), nil)
		if turn.Greeting != nil {
			h.sendMessage(chatID, turn.Greeting.Content, nil)
		}
	case turn.StageComplete && workflowDone(turn.Project, registry.NextStage):
		h.sendMessage(chatID, render.MsgWorkflowDone, h.keyboard.ReportKeyboard(h.projectUC.ReportFormats()))
	}
}

// workflowDone reports whether the project finished its last stage
func workflowDone(project *entity.Project, next func(entity.Stage) (entity.Stage, bool)) bool {
	if project == nil {
		return false
	}
	if _, ok := next(project.Stage); ok {
		return false
	}
	data := project.Data[project.Stage]
	return data != nil && data.Completed
}
