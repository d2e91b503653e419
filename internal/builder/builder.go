package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/launchpad-backend/internal/api"
	conversationapi "github.com/futig/launchpad-backend/internal/api/conversation"
	projectapi "github.com/futig/launchpad-backend/internal/api/project"
	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/integration/callback"
	"github.com/futig/launchpad-backend/internal/integration/llm"
	"github.com/futig/launchpad-backend/internal/pkg/formatter"
	"github.com/futig/launchpad-backend/internal/pkg/logger"
	"github.com/futig/launchpad-backend/internal/pkg/validator"
	"github.com/futig/launchpad-backend/internal/repository"
	"github.com/futig/launchpad-backend/internal/telegram"
	"github.com/futig/launchpad-backend/internal/usecase/conversation"
	"github.com/futig/launchpad-backend/internal/usecase/project"
	"github.com/futig/launchpad-backend/internal/workflow"
	"github.com/unidoc/unioffice/common/license"
	"go.uber.org/zap"
)

// Build wires the HTTP API and, when a bot token is configured, the Telegram bot
// on top of one shared project store.
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	projectUC := buildUsecase(cfg, log)

	projectHandler := projectapi.NewHandler(projectUC)
	conversationHandler := conversationapi.NewHandler(projectUC, projectUC.Registry())
	log.Info("API handlers initialized")

	router := api.SetupRouter(projectHandler, conversationHandler, cfg.RequestTimeout, cfg.CORSCfg, log)
	log.Info("HTTP router configured")

	// Streaming replies may outlive a short write timeout
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	app := &App{
		server:          server,
		projectUC:       projectUC,
		logger:          log,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	if cfg.TelegramCfg.BotToken != "" {
		bot, err := newTelegramBot(cfg, projectUC, log)
		if err != nil {
			return nil, err
		}
		app.bot = bot
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.Bool("telegram_enabled", app.bot != nil),
	)

	return app, nil
}

// BuildTelegramBot creates a standalone Telegram bot with its own project store
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	log.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	bot, err := newTelegramBot(cfg, buildUsecase(cfg, log), log)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)
	return bot, log, nil
}

// buildUsecase assembles the store, the engines and the integrations behind the project use case
func buildUsecase(cfg *config.Config, log *zap.Logger) *project.ProjectUsecase {
	registry := workflow.Default()

	projectRepo := repository.NewProjectMemory(cfg.StoreCfg)
	log.Info("Project store initialized",
		zap.Duration("project_ttl", cfg.StoreCfg.ProjectTTL),
	)

	if cfg.EnableMocks {
		log.Info("Using mock AI providers")
	}
	llmFactory := llm.NewFactory(cfg.LLMCfg, cfg.EnableMocks, log)
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, log)

	projectUC := project.NewUsecase(
		projectRepo,
		conversation.NewFactory(cfg.EngineCfg, registry),
		llmFactory,
		callbackConnector,
		newFormatterFactory(cfg, log),
		validator.New(cfg.ValidationCfg),
		log,
	)
	projectRepo.OnEvicted(projectUC.Forget)
	log.Info("Use cases initialized")

	return projectUC
}

// newFormatterFactory offers DOCX only when the unioffice metered key loads
func newFormatterFactory(cfg *config.Config, log *zap.Logger) *formatter.Factory {
	formatters := formatter.NewFactory()
	if cfg.UnidocLicenseKey == "" {
		log.Info("UNIDOC_LICENSE_API_KEY not set, DOCX reports disabled")
		return formatters
	}

	if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
		log.Warn("Failed to load unioffice license, DOCX reports disabled", zap.Error(err))
		return formatters
	}

	log.Info("DOCX reports enabled")
	return formatters.EnableDOCX()
}

func newTelegramBot(cfg *config.Config, projectUC *project.ProjectUsecase, log *zap.Logger) (telegram.Bot, error) {
	storage := repository.NewTelegramStateMemory(cfg.StoreCfg.ProjectTTL, cfg.StoreCfg.CleanupInterval)
	bot, err := telegram.NewBot(&cfg.TelegramCfg, storage, projectUC, log)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}
	return bot, nil
}
