package telegram

import (
	"context"
	"fmt"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/telegram/bot"
	"github.com/futig/launchpad-backend/internal/telegram/handlers"
	"github.com/futig/launchpad-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	projectUC handlers.ProjectUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, projectUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	projectUC := b.GetProjectUsecase()
	keyboard := b.GetKeyboard()

	b.RegisterHandler(handlers.NewCallbackHandler(api, stateManager, projectUC, b.GetCommands(), keyboard, logger))
	b.RegisterHandler(handlers.NewNameHandler(api, stateManager, projectUC, logger))
	b.RegisterHandler(handlers.NewChatHandler(api, stateManager, projectUC, keyboard, logger))

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 3),
	)
}
