package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "openai", cfg.LLMCfg.DefaultProvider)
	assert.Equal(t, "capability", cfg.EngineCfg.Responder)
	assert.Equal(t, "substance", cfg.EngineCfg.CompletionStrategy)
	assert.Equal(t, 50, cfg.EngineCfg.MinSubstance)
	assert.InDelta(t, 0.3, cfg.EngineCfg.SuggestionProbability, 1e-9)
	assert.Equal(t, 5, cfg.EngineCfg.SummaryInterval)
	assert.Equal(t, 24*time.Hour, cfg.StoreCfg.ProjectTTL)
	assert.Equal(t, uint(3), cfg.LLMCfg.Retry.Attempts)
	assert.Equal(t, []string{"*"}, cfg.CORSCfg.AllowedOrigins)
	assert.Equal(t, 300, cfg.CORSCfg.MaxAge)
	assert.Empty(t, cfg.UnidocLicenseKey)
}

func TestParse_NestedPrefixes(t *testing.T) {
	t.Setenv("LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_ANTHROPIC_MODEL", "claude-x")
	t.Setenv("LLM_RETRY_ATTEMPTS", "5")
	t.Setenv("ENGINE_RESPONDER", "static")
	t.Setenv("ENGINE_SUGGESTER", "rule")
	t.Setenv("CALLBACK_DEFAULT_URL", "http://hooks.local/events")
	t.Setenv("CALLBACK_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")
	t.Setenv("UNIDOC_LICENSE_API_KEY", "unidoc-key")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLMCfg.OpenAI.APIKey)
	assert.Equal(t, "claude-x", cfg.LLMCfg.Anthropic.Model)
	assert.Equal(t, uint(5), cfg.LLMCfg.Retry.Attempts)
	assert.Equal(t, "static", cfg.EngineCfg.Responder)
	assert.Equal(t, "rule", cfg.EngineCfg.Suggester)
	assert.Equal(t, "http://hooks.local/events", cfg.CallbackConnectorCfg.DefaultURL)
	assert.Equal(t, 5*time.Second, cfg.CallbackConnectorCfg.RequestTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSCfg.AllowedOrigins)
	assert.Equal(t, "unidoc-key", cfg.UnidocLicenseKey)
}

func TestParse_CORSCredentialsNeedExplicitOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOW_CREDENTIALS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	_, err = Parse()
	require.NoError(t, err)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"ENGINE_RESPONDER":              "magic",
		"ENGINE_COMPLETION_STRATEGY":    "vibes",
		"ENGINE_SUGGESTION_PROBABILITY": "1.5",
		"LLM_DEFAULT_PROVIDER":          "mistral",
		"TELEGRAM_RATE_LIMIT_BURST":     "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
