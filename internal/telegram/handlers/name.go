package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/telegram/render"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// NameHandler creates the project from the name the user sends
type NameHandler struct {
	BaseHandler
	stateManager *state.Manager
	projectUC    ProjectUsecase
}

// NewNameHandler creates a handler for the project naming step
func NewNameHandler(api BotAPI, stateManager *state.Manager, projectUC ProjectUsecase, logger *zap.Logger) *NameHandler {
	return &NameHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAwaitingName,
			messageSender: NewMessageSender(api, logger),
		},
		stateManager: stateManager,
		projectUC:    projectUC,
	}
}

// Handle implements Handler
func (h *NameHandler) Handle(ctx context.Context, msg *Message) error {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		h.sendMessage(msg.ChatID, render.MsgAskName, nil)
		return nil
	}

	project, err := h.projectUC.CreateProject(ctx, &entity.CreateProjectRequest{Name: name})
	if err != nil {
		// Validation failures keep the user on this step so they can retry
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if _, err := h.stateManager.BindProject(ctx, msg.UserID, msg.ChatID, project.ID); err != nil {
		return fmt.Errorf("bind project: %w", err)
	}

	ctxzap.Info(ctx, "project created from telegram",
		zap.String("project_id", project.ID),
		zap.Int64("user_id", msg.UserID),
	)

	h.sendMessage(msg.ChatID, fmt.Sprintf(render.MsgProjectCreated, project.Name), nil)

	greeting, err := h.projectUC.StartConversation(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}
	h.sendMessage(msg.ChatID, greeting.Content, nil)
	return nil
}
