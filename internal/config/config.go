package config

import (
	"flag"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/launchpad-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Browser access to the API
	CORSCfg CORSConfig `envPrefix:"CORS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DOCX reports are only offered when a UniDoc metered key is set
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// LLM providers
	LLMCfg LLMConfig `envPrefix:"LLM_"`

	// Conversation engine behaviour
	EngineCfg EngineConfig `envPrefix:"ENGINE_"`

	// In-memory project store
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// Request validation limits
	ValidationCfg ValidationConfig `envPrefix:"VALIDATION_"`

	// Stage lifecycle webhooks
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

type CORSConfig struct {
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowCredentials bool     `env:"ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"MAX_AGE" envDefault:"300"` // seconds
}

// LLMConfig holds server-level provider settings; projects may override keys at runtime
type LLMConfig struct {
	DefaultProvider  string               `env:"DEFAULT_PROVIDER" envDefault:"openai"`
	OpenAI           ProviderConfig       `envPrefix:"OPENAI_"`
	Anthropic        ProviderConfig       `envPrefix:"ANTHROPIC_"`
	Google           ProviderConfig       `envPrefix:"GOOGLE_"`
	HTTPClientConfig HTTPClientConfig     `envPrefix:"HTTP_"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ProviderConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL"`
	BaseURL string `env:"BASE_URL"`
}

// EngineConfig selects conversation strategies and tunes their thresholds
type EngineConfig struct {
	Responder             string  `env:"RESPONDER" envDefault:"capability"`
	Suggester             string  `env:"SUGGESTER" envDefault:"capability"`
	CompletionStrategy    string  `env:"COMPLETION_STRATEGY" envDefault:"substance"`
	MinSubstance          int     `env:"MIN_SUBSTANCE" envDefault:"50"`
	SuggestionProbability float64 `env:"SUGGESTION_PROBABILITY" envDefault:"0.3"`
	SummaryInterval       int     `env:"SUMMARY_INTERVAL" envDefault:"5"`
	ExtractionWindow      int     `env:"EXTRACTION_WINDOW" envDefault:"4"`
	ContextWindow         int     `env:"CONTEXT_WINDOW" envDefault:"6"`
}

type StoreConfig struct {
	ProjectTTL      time.Duration `env:"PROJECT_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// ValidationConfig bounds user supplied text
type ValidationConfig struct {
	MaxNameLength        int `env:"MAX_NAME_LENGTH" envDefault:"120"`
	MaxDescriptionLength int `env:"MAX_DESCRIPTION_LENGTH" envDefault:"2000"`
	MaxMessageLength     int `env:"MAX_MESSAGE_LENGTH" envDefault:"4000"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	// DefaultURL receives events of projects created without their own callback URL
	DefaultURL string               `env:"DEFAULT_URL"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads and validates the configuration from the process environment
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.LLMCfg.DefaultProvider {
	case "openai", "anthropic", "google":
	default:
		errors = append(errors, fmt.Sprintf("LLM_DEFAULT_PROVIDER must be one of openai, anthropic, google, got %q", cfg.LLMCfg.DefaultProvider))
	}

	// Validate engine configuration
	engine := cfg.EngineCfg
	if engine.Responder != "static" && engine.Responder != "capability" {
		errors = append(errors, fmt.Sprintf("ENGINE_RESPONDER must be static or capability, got %q", engine.Responder))
	}

	if engine.Suggester != "rule" && engine.Suggester != "capability" {
		errors = append(errors, fmt.Sprintf("ENGINE_SUGGESTER must be rule or capability, got %q", engine.Suggester))
	}

	if engine.CompletionStrategy != "substance" && engine.CompletionStrategy != "extraction" {
		errors = append(errors, fmt.Sprintf("ENGINE_COMPLETION_STRATEGY must be substance or extraction, got %q", engine.CompletionStrategy))
	}

	if engine.MinSubstance < 1 || engine.MinSubstance > 1000 {
		errors = append(errors, fmt.Sprintf("ENGINE_MIN_SUBSTANCE must be between 1 and 1000, got %d", engine.MinSubstance))
	}

	if engine.SuggestionProbability < 0 || engine.SuggestionProbability > 1 {
		errors = append(errors, fmt.Sprintf("ENGINE_SUGGESTION_PROBABILITY must be between 0 and 1, got %g", engine.SuggestionProbability))
	}

	if engine.SummaryInterval < 1 {
		errors = append(errors, fmt.Sprintf("ENGINE_SUMMARY_INTERVAL must be positive, got %d", engine.SummaryInterval))
	}

	if engine.ExtractionWindow < 1 || engine.ContextWindow < 1 {
		errors = append(errors, "ENGINE_EXTRACTION_WINDOW and ENGINE_CONTEXT_WINDOW must be positive")
	}

	if len(cfg.CORSCfg.AllowedOrigins) == 0 {
		errors = append(errors, "CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if cfg.CORSCfg.AllowCredentials && slices.Contains(cfg.CORSCfg.AllowedOrigins, "*") {
		errors = append(errors, "CORS_ALLOW_CREDENTIALS cannot be combined with a wildcard origin")
	}

	if cfg.StoreCfg.ProjectTTL <= 0 {
		errors = append(errors, fmt.Sprintf("STORE_PROJECT_TTL must be positive, got %s", cfg.StoreCfg.ProjectTTL))
	}

	v := cfg.ValidationCfg
	if v.MaxNameLength < 1 || v.MaxDescriptionLength < 1 || v.MaxMessageLength < 1 {
		errors = append(errors, "VALIDATION_MAX_* limits must be positive")
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
