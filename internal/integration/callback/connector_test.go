package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	pkgRetry "github.com/futig/launchpad-backend/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(defaultURL string) config.CallbackConnectorConfig {
	return config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: time.Second,
			Token:                 "secret",
		},
		DefaultURL: defaultURL,
		Retry:      pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestSendStageCompleted_UsesProjectURL(t *testing.T) {
	var got entity.CallbackEvent
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(""), zap.NewNop())
	project := &entity.Project{ID: "p1", CallbackURL: srv.URL}

	c.SendStageCompleted(context.Background(), project, &entity.CallbackStageCompletedData{
		Stage:     entity.StageSpark,
		NextStage: entity.StageValidate,
		Progress:  14,
	})

	assert.Equal(t, entity.CallbackEventStageCompleted, got.Event)
	assert.Equal(t, "p1", got.ProjectID)
	assert.NotEmpty(t, got.Timestamp)
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "stage_completed", headers.Get("X-Event-Type"))
}

func TestSend_RetriesTemporaryFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(""), zap.NewNop())
	err := c.Send(context.Background(), srv.URL, &entity.CallbackEvent{Event: entity.CallbackEventError, ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSend_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(""), zap.NewNop())
	err := c.Send(context.Background(), srv.URL, &entity.CallbackEvent{Event: entity.CallbackEventError})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatch_FallsBackToDefaultURLOrSkips(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	NewConnector(testConfig(srv.URL), zap.NewNop()).
		SendSuggestionResolved(context.Background(), &entity.Project{ID: "p1"}, &entity.FeatureSuggestion{ID: "s1"})
	assert.Equal(t, int32(1), calls.Load())

	NewConnector(testConfig(""), zap.NewNop()).
		SendError(context.Background(), &entity.Project{ID: "p1"}, "boom", nil)
	assert.Equal(t, int32(1), calls.Load())
}
