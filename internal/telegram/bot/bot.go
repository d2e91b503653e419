package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/telegram/handlers"
	"github.com/futig/launchpad-backend/internal/telegram/keyboard"
	"github.com/futig/launchpad-backend/internal/telegram/middleware"
	"github.com/futig/launchpad-backend/internal/telegram/render"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	projectUC    handlers.ProjectUsecase
	commands     *handlers.Commands
	sender       *handlers.MessageSender
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	// slots bounds the number of updates handled at once
	slots    chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	projectUC handlers.ProjectUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	kb := keyboard.NewBuilder()
	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		projectUC:    projectUC,
		commands:     handlers.NewCommands(api, stateManager, projectUC, kb, logger),
		sender:       handlers.NewMessageSender(api, logger),
		keyboard:     kb,
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		slots:        make(chan struct{}, max(cfg.MaxConcurrentUsers, 1)),
		stopChan:     make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.slots <- struct{}{}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer func() {
					<-b.slots
					b.wg.Done()
				}()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Handlers outlive the polling loop during shutdown
	ctx = context.WithoutCancel(ctx)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID
	ctx = logger.AddFields(ctx, zap.Int64("user_id", userID))

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		// Unknown user: nothing bound yet
		b.commands.Welcome(ctx, chatID)
		return
	}
	ctx = state.ContextWithStateData(ctx, stateData)

	handler, exists := b.handlers[string(stateData.Step)]
	if !exists {
		b.sendMessage(chatID, render.MsgNoProject, b.keyboard.StartKeyboard())
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.String("state", handler.GetState()),
		)
		b.sendMessage(chatID, render.ErrGeneric, nil)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	userID := message.From.ID
	chatID := message.Chat.ID

	ctxzap.Info(ctx, "command received", zap.String("command", command))

	switch command {
	case "start":
		b.commands.Welcome(ctx, chatID)
	case "new":
		b.commands.AskName(ctx, userID, chatID)
	case "help":
		b.commands.Help(chatID)
	case "stage":
		b.commands.ShowProgress(ctx, userID, chatID)
	case "report":
		if format := message.CommandArguments(); format != "" {
			b.commands.SendReport(ctx, userID, chatID, format)
			return
		}
		b.commands.AskReport(ctx, userID, chatID)
	case "cancel":
		b.commands.AskCancel(ctx, userID, chatID)
	default:
		b.sendMessage(chatID, "❌ Unknown command. Use /help", nil)
	}
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.sender.AnswerCallback(query.ID, "")
		return
	}

	callbackData, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.sender.AnswerCallback(query.ID, "❌ Invalid data")
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	ctx = logger.AddFields(ctx, zap.Int64("user_id", userID))

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", callbackData.Action),
		zap.String("value", callbackData.Value),
	)

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.sender.AnswerCallback(query.ID, "❌ Handler not found")
		return
	}

	// Answer right away so Telegram does not consider the query stale
	b.sender.AnswerCallback(query.ID, "⏳ Working on it...")

	msg := &handlers.Message{
		ChatID:       chatID,
		UserID:       userID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
		Markup:       query.Message.ReplyMarkup,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "callback handler error", zap.Error(err))
		b.sendMessage(chatID, render.ErrGeneric, nil)
	}
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	_ = b.sender.Send(chatID, text, replyMarkup)
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetProjectUsecase returns the project usecase (for handlers)
func (b *Bot) GetProjectUsecase() handlers.ProjectUsecase {
	return b.projectUC
}

// GetCommands returns the shared command set (for handlers)
func (b *Bot) GetCommands() *handlers.Commands {
	return b.commands
}
