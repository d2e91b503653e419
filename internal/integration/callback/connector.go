package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/futig/launchpad-backend/internal/integration/common"
	pkghttp "github.com/futig/launchpad-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts project lifecycle events to webhook URLs
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, "", logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendStageCompleted reports a finished stage and where the project moved to
func (c *Connector) SendStageCompleted(ctx context.Context, project *entity.Project, data *entity.CallbackStageCompletedData) {
	c.dispatch(ctx, project, entity.CallbackEventStageCompleted, data)
}

// SendSuggestionResolved reports an accepted or declined feature suggestion
func (c *Connector) SendSuggestionResolved(ctx context.Context, project *entity.Project, suggestion *entity.FeatureSuggestion) {
	c.dispatch(ctx, project, entity.CallbackEventSuggestionResolved, &entity.CallbackSuggestionResolvedData{
		Suggestion: suggestion,
	})
}

// SendError reports a failed assistant turn
func (c *Connector) SendError(ctx context.Context, project *entity.Project, message string, details map[string]any) {
	c.dispatch(ctx, project, entity.CallbackEventError, &entity.CallbackErrorData{
		Message: message,
		Details: details,
	})
}

func (c *Connector) dispatch(ctx context.Context, project *entity.Project, eventType entity.CallbackEventType, data any) {
	url := c.urlFor(project)
	if url == "" {
		return
	}

	err := c.Send(ctx, url, &entity.CallbackEvent{
		Event:     eventType,
		ProjectID: project.ID,
		Data:      data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send callback",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}

func (c *Connector) urlFor(project *entity.Project) string {
	if project != nil && project.CallbackURL != "" {
		return project.CallbackURL
	}
	return c.config.DefaultURL
}

// Send posts the event, retrying network failures and temporary HTTP statuses
func (c *Connector) Send(ctx context.Context, callbackURL string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("project_id", event.ProjectID),
		zap.String("timestamp", event.Timestamp),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Project-ID", event.ProjectID),
		pkghttp.WithHeader("X-Event-Type", string(event.Event)),
		pkghttp.WithURL(callbackURL),
	}

	retryOpts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTemporary),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Info(ctx, "retrying callback",
				zap.String("event_type", string(event.Event)),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, opts...)
	}, retryOpts...)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", string(event.Event), callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("project_id", event.ProjectID),
	)
	return nil
}

func isTemporary(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return false
}
