package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Service routes completion requests to the configured provider connectors
type Service struct {
	connectors      map[entity.Provider]Connector
	defaultProvider entity.Provider
	retryOpts       []retry.Option
}

// NewService keeps connectors in selection order; preferred wins when present
func NewService(connectors []Connector, preferred entity.Provider, retryOpts ...retry.Option) *Service {
	s := &Service{
		connectors: make(map[entity.Provider]Connector, len(connectors)),
		retryOpts:  retryOpts,
	}
	for _, c := range connectors {
		s.connectors[c.Provider()] = c
	}

	if _, ok := s.connectors[preferred]; ok {
		s.defaultProvider = preferred
		return s
	}
	for _, p := range entity.Providers {
		if _, ok := s.connectors[p]; ok {
			s.defaultProvider = p
			break
		}
	}
	return s
}

// Configured reports whether at least one provider can be called
func (s *Service) Configured() bool {
	return len(s.connectors) > 0
}

// Providers lists configured providers in selection order
func (s *Service) Providers() []entity.Provider {
	out := make([]entity.Provider, 0, len(s.connectors))
	for _, p := range entity.Providers {
		if _, ok := s.connectors[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) DefaultProvider() entity.Provider {
	return s.defaultProvider
}

// Complete returns the full reply for role-tagged messages
func (s *Service) Complete(ctx context.Context, messages []entity.LLMMessage, opts entity.ChatOptions) (string, error) {
	return s.complete(ctx, PurposeChat, messages, opts)
}

// Stream yields reply chunks; the last chunk has Finished set
func (s *Service) Stream(ctx context.Context, messages []entity.LLMMessage, opts entity.ChatOptions) iter.Seq2[entity.StreamChunk, error] {
	return s.stream(ctx, PurposeChat, messages, opts)
}

// Advise asks for conversational business advice
func (s *Service) Advise(ctx context.Context, businessContext, question string) (string, error) {
	return s.complete(ctx, PurposeAdvice, adviceMessages(businessContext, question), entity.ChatOptions{
		Temperature: adviceTemperature,
		MaxTokens:   adviceMaxTokens,
	})
}

// AdviseStream is Advise with every chunk forwarded to sink; returns the concatenated reply
func (s *Service) AdviseStream(ctx context.Context, businessContext, question string, sink func(string)) (string, error) {
	var b strings.Builder
	chunks := s.stream(ctx, PurposeAdvice, adviceMessages(businessContext, question), entity.ChatOptions{
		Temperature: adviceTemperature,
		MaxTokens:   adviceMaxTokens,
	})
	for chunk, err := range chunks {
		if err != nil {
			return "", err
		}
		if chunk.Content == "" {
			continue
		}
		b.WriteString(chunk.Content)
		if sink != nil {
			sink(chunk.Content)
		}
	}
	return b.String(), nil
}

// ExtractInsights asks for structured business facts from a transcript
func (s *Service) ExtractInsights(ctx context.Context, conversation string) (*entity.BusinessInsights, error) {
	messages := []entity.LLMMessage{
		{Role: entity.RoleSystem, Content: extractionSystemPrompt},
		{Role: entity.RoleUser, Content: extractionUser(conversation)},
	}

	reply, err := s.complete(ctx, PurposeExtraction, messages, entity.ChatOptions{
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	insights, err := ParseJSONResponse[entity.BusinessInsights](reply)
	if err != nil {
		return nil, err
	}
	return &insights, nil
}

// SuggestFeatures asks for up to two feature proposals
func (s *Service) SuggestFeatures(ctx context.Context, prompt entity.SuggestionPrompt) ([]entity.SuggestionDraft, error) {
	messages := []entity.LLMMessage{
		{Role: entity.RoleSystem, Content: suggestionSystemPrompt},
		{Role: entity.RoleUser, Content: suggestionUser(prompt)},
	}

	reply, err := s.complete(ctx, PurposeSuggestion, messages, entity.ChatOptions{
		Temperature: suggestTemperature,
		MaxTokens:   suggestMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return ParseJSONResponse[[]entity.SuggestionDraft](reply)
}

// Summarize condenses a transcript into a few sentences
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	messages := []entity.LLMMessage{
		{Role: entity.RoleSystem, Content: summarySystemPrompt},
		{Role: entity.RoleUser, Content: summaryUser(transcript)},
	}

	reply, err := s.complete(ctx, PurposeSummary, messages, entity.ChatOptions{
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (s *Service) complete(ctx context.Context, purpose Purpose, messages []entity.LLMMessage, opts entity.ChatOptions) (string, error) {
	conn, err := s.connector(opts.Provider)
	if err != nil {
		return "", err
	}

	req := buildRequest(purpose, messages, opts)
	start := time.Now()

	reply, err := retry.DoWithData(
		func() (string, error) {
			reply, err := conn.Complete(ctx, req)
			if err != nil {
				return "", Classify(conn.Provider(), err)
			}
			return reply, nil
		},
		s.retryOptions(ctx, conn, purpose)...,
	)
	if err != nil {
		ctxzap.Warn(ctx, "llm completion failed",
			zap.String("provider", string(conn.Provider())),
			zap.String("purpose", string(purpose)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", Classify(conn.Provider(), err)
	}

	ctxzap.Debug(ctx, "llm completion finished",
		zap.String("provider", string(conn.Provider())),
		zap.String("model", conn.Model()),
		zap.String("purpose", string(purpose)),
		zap.Int("reply_length", len(reply)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return reply, nil
}

func (s *Service) stream(ctx context.Context, purpose Purpose, messages []entity.LLMMessage, opts entity.ChatOptions) iter.Seq2[entity.StreamChunk, error] {
	return func(yield func(entity.StreamChunk, error) bool) {
		conn, err := s.connector(opts.Provider)
		if err != nil {
			yield(entity.StreamChunk{}, err)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		req := buildRequest(purpose, messages, opts)
		provider := conn.Provider()
		emitted := false
		stopped := false

		onDelta := func(delta string) {
			if stopped {
				return
			}
			emitted = true
			if !yield(entity.StreamChunk{Content: delta, Provider: provider}, nil) {
				stopped = true
				cancel()
			}
		}

		retryOpts := append(s.retryOptions(ctx, conn, purpose), retry.RetryIf(func(err error) bool {
			// a stream that already produced output cannot be replayed
			return !emitted && IsRetryable(err)
		}))

		err = retry.Do(func() error {
			if err := conn.Stream(ctx, req, onDelta); err != nil {
				return Classify(provider, err)
			}
			return nil
		}, retryOpts...)

		if stopped {
			return
		}
		if err != nil {
			ctxzap.Warn(ctx, "llm stream failed",
				zap.String("provider", string(provider)),
				zap.String("purpose", string(purpose)),
				zap.Error(err),
			)
			yield(entity.StreamChunk{Provider: provider}, Classify(provider, err))
			return
		}

		yield(entity.StreamChunk{Finished: true, Provider: provider}, nil)
	}
}

func (s *Service) connector(provider entity.Provider) (Connector, error) {
	if len(s.connectors) == 0 {
		return nil, entity.ErrProviderUnavailable
	}
	if provider == "" {
		provider = s.defaultProvider
	}
	conn, ok := s.connectors[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s has no credential", entity.ErrProviderUnavailable, provider)
	}
	return conn, nil
}

func (s *Service) retryOptions(ctx context.Context, conn Connector, purpose Purpose) []retry.Option {
	opts := make([]retry.Option, 0, len(s.retryOpts)+4)
	opts = append(opts, s.retryOpts...)
	opts = append(opts,
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Info(ctx, "retrying llm call",
				zap.String("provider", string(conn.Provider())),
				zap.String("purpose", string(purpose)),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	return opts
}

func buildRequest(purpose Purpose, messages []entity.LLMMessage, opts entity.ChatOptions) *Request {
	req := &Request{
		Purpose:     purpose,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Messages:    make([]entity.LLMMessage, 0, len(messages)),
	}
	if req.Temperature == 0 {
		req.Temperature = defaultTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}

	var system []string
	for _, m := range messages {
		if m.Role == entity.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, m)
	}
	req.System = strings.Join(system, "\n\n")

	return req
}

func adviceMessages(businessContext, question string) []entity.LLMMessage {
	return []entity.LLMMessage{
		{Role: entity.RoleSystem, Content: adviceSystem(businessContext)},
		{Role: entity.RoleUser, Content: question},
	}
}

// IsUnavailable reports whether err means no provider credential is configured
func IsUnavailable(err error) bool {
	return errors.Is(err, entity.ErrProviderUnavailable)
}
