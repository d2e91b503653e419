package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/futig/launchpad-backend/internal/entity"
	pkghttp "github.com/futig/launchpad-backend/pkg/http"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      ErrorKind
		retryable bool
		status    int
	}{
		{name: "openai api error", err: &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, kind: ErrorKindRateLimit, retryable: true, status: 429},
		{name: "openai request error", err: &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, kind: ErrorKindServer, retryable: true, status: 502},
		{name: "http error", err: fmt.Errorf("wrapped: %w", &pkghttp.HTTPError{StatusCode: 401}), kind: ErrorKindAuth, status: 401},
		{name: "status in message", err: errors.New("error, status code: 503"), kind: ErrorKindServer, retryable: true, status: 503},
		{name: "bad request", err: errors.New("400 invalid model parameter"), kind: ErrorKindBadRequest, status: 400},
		{name: "invalid key", err: errors.New("invalid x-api-key"), kind: ErrorKindAuth},
		{name: "overloaded", err: errors.New("overloaded_error: Overloaded"), kind: ErrorKindRateLimit, retryable: true},
		{name: "network", err: errors.New("dial tcp: connection refused"), kind: ErrorKindNetwork, retryable: true},
		{name: "canceled", err: context.Canceled, kind: ErrorKindCanceled},
		{name: "deadline", err: context.DeadlineExceeded, kind: ErrorKindTimeout},
		{name: "unknown", err: errors.New("something odd"), kind: ErrorKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := Classify(entity.ProviderOpenAI, tt.err)
			require.NotNil(t, pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.retryable, pe.Retryable)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.ErrorIs(t, pe, entity.ErrProviderError)
			assert.ErrorIs(t, pe, tt.err)
		})
	}
}

func TestClassify_KeepsExistingProviderError(t *testing.T) {
	orig := &ProviderError{Provider: entity.ProviderGoogle, Kind: ErrorKindEmpty}
	assert.Same(t, orig, Classify(entity.ProviderOpenAI, fmt.Errorf("wrap: %w", orig)))
	assert.Nil(t, Classify(entity.ProviderOpenAI, nil))
}

func TestProviderError_Error(t *testing.T) {
	pe := &ProviderError{Provider: entity.ProviderAnthropic, Kind: ErrorKindServer, StatusCode: 500, Cause: errors.New("boom")}
	assert.Equal(t, "anthropic server HTTP 500: boom", pe.Error())
}
