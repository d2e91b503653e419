package handlers

import (
	"context"
	"fmt"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/telegram/keyboard"
	"github.com/futig/launchpad-backend/internal/telegram/render"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline button presses
type CallbackHandler struct {
	BaseHandler
	stateManager *state.Manager
	projectUC    ProjectUsecase
	commands     *Commands
	keyboard     *keyboard.Builder
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	api BotAPI,
	stateManager *state.Manager,
	projectUC ProjectUsecase,
	commands *Commands,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(api, logger),
		},
		stateManager: stateManager,
		projectUC:    projectUC,
		commands:     commands,
		keyboard:     keyboard,
	}
}

// Handle implements Handler
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	switch data.Action {
	case keyboard.ActionAccept:
		return h.resolve(ctx, msg, data.Value, entity.DecisionAccept)
	case keyboard.ActionDecline:
		return h.resolve(ctx, msg, data.Value, entity.DecisionDecline)
	case keyboard.ActionReport:
		h.commands.SendReport(ctx, msg.UserID, msg.ChatID, data.Value)
	case keyboard.ActionConfirm:
		h.commands.Confirm(ctx, msg.UserID, msg.ChatID, data.Value)
	case keyboard.ActionCommand:
		switch data.Value {
		case keyboard.CommandNewProject:
			h.commands.AskName(ctx, msg.UserID, msg.ChatID)
		case keyboard.CommandProgress:
			h.commands.ShowProgress(ctx, msg.UserID, msg.ChatID)
		case keyboard.CommandReport:
			h.commands.AskReport(ctx, msg.UserID, msg.ChatID)
		default:
			return fmt.Errorf("unknown command %q", data.Value)
		}
	default:
		return fmt.Errorf("unknown callback action %q", data.Action)
	}
	return nil
}

func (h *CallbackHandler) resolve(ctx context.Context, msg *Message, suggestionID string, decision entity.SuggestionDecision) error {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.ProjectID == "" {
		h.sendMessage(msg.ChatID, render.MsgNoProject, h.keyboard.StartKeyboard())
		return nil
	}

	resp, err := h.projectUC.ResolveSuggestion(ctx, session.ProjectID, suggestionID, decision)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	ctxzap.Info(ctx, "suggestion resolved from telegram",
		zap.String("suggestion_id", suggestionID),
		zap.String("status", string(resp.Suggestion.Status)),
	)

	_ = h.messageSender.EditMarkup(msg.ChatID, msg.MessageID, h.keyboard.WithoutSuggestion(msg.Markup, suggestionID))
	h.sendMessage(msg.ChatID, render.RenderSuggestionResolved(resp.Suggestion), nil)
	return nil
}
