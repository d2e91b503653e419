package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-1.5-flash"

type GoogleConnector struct {
	client *genai.Client
	model  string
}

func NewGoogleConnector(ctx context.Context, cfg config.ProviderConfig, apiKey string, httpClient *http.Client) (*GoogleConnector, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGoogleModel
	}

	return &GoogleConnector{client: client, model: model}, nil
}

func (c *GoogleConnector) Provider() entity.Provider { return entity.ProviderGoogle }

func (c *GoogleConnector) Model() string { return c.model }

func (c *GoogleConnector) Complete(ctx context.Context, req *Request) (string, error) {
	contents, cfg := c.buildRequest(req)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", Classify(entity.ProviderGoogle, err)
	}

	text := resp.Text()
	if text == "" {
		return "", &ProviderError{Provider: entity.ProviderGoogle, Kind: ErrorKindEmpty, Cause: fmt.Errorf("no text in response")}
	}
	return text, nil
}

func (c *GoogleConnector) Stream(ctx context.Context, req *Request, onDelta func(string)) error {
	contents, cfg := c.buildRequest(req)

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, cfg) {
		if err != nil {
			return Classify(entity.ProviderGoogle, err)
		}
		if text := resp.Text(); text != "" {
			onDelta(text)
		}
	}
	return nil
}

func (c *GoogleConnector) buildRequest(req *Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == entity.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	return contents, cfg
}
