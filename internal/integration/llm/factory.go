package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/integration/common"
	"go.uber.org/zap"
)

// Factory builds a Service for a credential set
type Factory struct {
	cfg         config.LLMConfig
	enableMocks bool
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewFactory(cfg config.LLMConfig, enableMocks bool, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:         cfg,
		enableMocks: enableMocks,
		httpClient:  common.NewHTTPClient(cfg.HTTPClientConfig),
		logger:      logger,
	}
}

// ServerCredentials returns the keys configured through the environment
func (f *Factory) ServerCredentials() entity.Credentials {
	return entity.Credentials{
		entity.ProviderOpenAI:    f.cfg.OpenAI.APIKey,
		entity.ProviderAnthropic: f.cfg.Anthropic.APIKey,
		entity.ProviderGoogle:    f.cfg.Google.APIKey,
	}
}

// NewService creates connectors for every provider with a non-empty key
func (f *Factory) NewService(ctx context.Context, creds entity.Credentials) (*Service, error) {
	preferred := entity.Provider(f.cfg.DefaultProvider)
	retryOpts := f.cfg.Retry.ToRetryOptions()

	if f.enableMocks {
		f.logger.Debug("Using mock LLM connector")
		return NewService([]Connector{NewMockConnector(entity.ProviderOpenAI)}, entity.ProviderOpenAI, retryOpts...), nil
	}

	connectors := make([]Connector, 0, len(entity.Providers))
	for _, p := range entity.Providers {
		key := creds[p]
		if key == "" {
			continue
		}

		switch p {
		case entity.ProviderOpenAI:
			connectors = append(connectors, NewOpenAIConnector(f.cfg.OpenAI, key, f.httpClient))
		case entity.ProviderAnthropic:
			connectors = append(connectors, NewAnthropicConnector(f.cfg.Anthropic, key, f.httpClient))
		case entity.ProviderGoogle:
			conn, err := NewGoogleConnector(ctx, f.cfg.Google, key, f.httpClient)
			if err != nil {
				return nil, fmt.Errorf("init %s connector: %w", p, err)
			}
			connectors = append(connectors, conn)
		}
	}

	svc := NewService(connectors, preferred, retryOpts...)
	f.logger.Debug("LLM service built",
		zap.Int("providers", len(connectors)),
		zap.String("default_provider", string(svc.DefaultProvider())),
	)
	return svc, nil
}
