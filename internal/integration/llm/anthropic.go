package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicModel = "claude-3-5-sonnet-20241022"

type AnthropicConnector struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicConnector(cfg config.ProviderConfig, apiKey string, httpClient *http.Client) *AnthropicConnector {
	opts := make([]anthropic.ClientOption, 0, 2)
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}
	if httpClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(httpClient))
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicConnector{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *AnthropicConnector) Provider() entity.Provider { return entity.ProviderAnthropic }

func (c *AnthropicConnector) Model() string { return c.model }

func (c *AnthropicConnector) Complete(ctx context.Context, req *Request) (string, error) {
	resp, err := c.client.CreateMessages(ctx, c.buildRequest(req))
	if err != nil {
		return "", Classify(entity.ProviderAnthropic, err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text, nil
		}
	}

	return "", &ProviderError{Provider: entity.ProviderAnthropic, Kind: ErrorKindEmpty, Cause: fmt.Errorf("no text block in response")}
}

func (c *AnthropicConnector) Stream(ctx context.Context, req *Request, onDelta func(string)) error {
	_, err := c.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: c.buildRequest(req),
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text != nil && *data.Delta.Text != "" {
				onDelta(*data.Delta.Text)
			}
		},
	})
	if err != nil {
		return Classify(entity.ProviderAnthropic, err)
	}
	return nil
}

func (c *AnthropicConnector) buildRequest(req *Request) anthropic.MessagesRequest {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == entity.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
			continue
		}
		messages = append(messages, anthropic.NewUserTextMessage(m.Content))
	}

	temperature := float32(req.Temperature)
	return anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      req.System,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: &temperature,
	}
}
