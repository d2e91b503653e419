package handlers

import (
	"context"

	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/telegram/keyboard"
	"github.com/futig/launchpad-backend/internal/telegram/render"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Commands implements the slash commands and the menu buttons that mirror them
type Commands struct {
	BaseHandler
	api          BotAPI
	stateManager *state.Manager
	projectUC    ProjectUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewCommands creates the command set
func NewCommands(
	api BotAPI,
	stateManager *state.Manager,
	projectUC ProjectUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *Commands {
	return &Commands{
		BaseHandler: BaseHandler{
			messageSender: NewMessageSender(api, logger),
		},
		api:          api,
		stateManager: stateManager,
		projectUC:    projectUC,
		keyboard:     keyboard,
		logger:       logger,
	}
}

// Welcome greets the user and offers to create a project
func (c *Commands) Welcome(ctx context.Context, chatID int64) {
	if err := c.messageSender.Send(chatID, render.MsgWelcome, c.keyboard.StartKeyboard()); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message", zap.Error(err))
	}
}

// Help lists the available commands
func (c *Commands) Help(chatID int64) {
	c.sendMessage(chatID, render.MsgHelp, nil)
}

// AskName moves the user to project naming
func (c *Commands) AskName(ctx context.Context, userID, chatID int64) {
	if err := c.stateManager.SetStep(ctx, userID, chatID, state.StepAwaitingName); err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	c.sendMessage(chatID, render.MsgAskName, nil)
}

// ShowProgress prints the active stage and the overall progress
func (c *Commands) ShowProgress(ctx context.Context, userID, chatID int64) {
	project, ok := c.activeProject(ctx, userID, chatID)
	if !ok {
		return
	}

	registry := c.projectUC.Registry()
	position := 1
	for i, stage := range registry.Stages() {
		if stage.ID == project.Stage {
			position = i + 1
			break
		}
	}

	text := render.RenderProgress(project, registry.StageConfig(project.Stage), position, registry.Len())
	c.sendMessage(chatID, text, c.keyboard.ProgressKeyboard())
}

// AskReport offers the report formats
func (c *Commands) AskReport(ctx context.Context, userID, chatID int64) {
	if _, ok := c.activeProject(ctx, userID, chatID); !ok {
		return
	}
	c.sendMessage(chatID, render.MsgChooseReportFormat, c.keyboard.ReportKeyboard(c.projectUC.ReportFormats()))
}

// SendReport renders the business plan and uploads it as a document
func (c *Commands) SendReport(ctx context.Context, userID, chatID int64, rawFormat string) {
	project, ok := c.activeProject(ctx, userID, chatID)
	if !ok {
		return
	}

	format, err := entity.ParseReportFormat(rawFormat)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}

	upload := NewUploadNotifier(c.api, chatID, c.logger)
	upload.Start(ctx)
	defer upload.Stop()

	file, err := c.projectUC.Report(ctx, project.ID, format)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	if err := c.messageSender.SendDocument(chatID, file); err != nil {
		c.HandleError(ctx, chatID, err)
	}
}

// AskCancel requests a confirmation before the project is closed
func (c *Commands) AskCancel(ctx context.Context, userID, chatID int64) {
	if _, ok := c.activeProject(ctx, userID, chatID); !ok {
		return
	}

	data, err := c.stateManager.GetStateData(ctx, userID)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	data.PendingConfirmation = keyboard.ConfirmCancel
	if err := c.stateManager.UpdateStateData(ctx, userID, data); err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	c.sendMessage(chatID, render.MsgCancelConfirm, c.keyboard.CancelConfirmKeyboard())
}

// Confirm completes or aborts a pending destructive action
func (c *Commands) Confirm(ctx context.Context, userID, chatID int64, answer string) {
	data, err := c.stateManager.GetStateData(ctx, userID)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	if data.PendingConfirmation != keyboard.ConfirmCancel {
		c.sendMessage(chatID, render.ErrInvalidState, nil)
		return
	}

	if answer != keyboard.ConfirmCancel {
		data.PendingConfirmation = ""
		if err := c.stateManager.UpdateStateData(ctx, userID, data); err != nil {
			c.HandleError(ctx, chatID, err)
		}
		return
	}

	session, err := c.stateManager.GetSession(ctx, userID)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return
	}
	if session.ProjectID != "" {
		if err := c.projectUC.DeleteProject(ctx, session.ProjectID); err != nil {
			ctxzap.Warn(ctx, "failed to delete project",
				zap.Error(err),
				zap.String("project_id", session.ProjectID),
			)
		}
	}
	if err := c.stateManager.DeleteSession(ctx, userID); err != nil {
		ctxzap.Error(ctx, "failed to delete telegram session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
	c.sendMessage(chatID, render.MsgProjectClosed, nil)
}

// activeProject loads the project bound to the user, telling them when there is none
func (c *Commands) activeProject(ctx context.Context, userID, chatID int64) (*entity.Project, bool) {
	session, err := c.stateManager.GetSession(ctx, userID)
	if err != nil || session.ProjectID == "" {
		c.sendMessage(chatID, render.MsgNoProject, c.keyboard.StartKeyboard())
		return nil, false
	}

	project, err := c.projectUC.GetProject(ctx, session.ProjectID)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return nil, false
	}
	return project, true
}
