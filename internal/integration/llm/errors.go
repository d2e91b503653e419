package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
	pkghttp "github.com/futig/launchpad-backend/pkg/http"
	"github.com/sashabaranov/go-openai"
)

// ErrorKind classifies provider failures
type ErrorKind string

const (
	ErrorKindAuth       ErrorKind = "auth"
	ErrorKindRateLimit  ErrorKind = "rate_limit"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindServer     ErrorKind = "server"
	ErrorKindBadRequest ErrorKind = "bad_request"
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindCanceled   ErrorKind = "canceled"
	ErrorKindEmpty      ErrorKind = "empty_response"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// ProviderError is a classified failure of a provider call
type ProviderError struct {
	Provider   entity.Provider
	Kind       ErrorKind
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	parts := []string{string(e.Provider), string(e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is makes every ProviderError match entity.ErrProviderError
func (e *ProviderError) Is(target error) bool {
	return target == entity.ErrProviderError
}

// IsRetryable reports whether err is a retryable ProviderError
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// Classify wraps err into a ProviderError using typed SDK errors first and message heuristics second
func Classify(provider entity.Provider, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &ProviderError{Provider: provider, Kind: ErrorKindCanceled, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{Provider: provider, Kind: ErrorKindTimeout, Cause: err}
	}

	if status := statusCode(err); status > 0 {
		return fromStatus(provider, status, err)
	}

	lower := strings.ToLower(err.Error())
	for _, code := range []int{401, 403, 429, 500, 502, 503, 504, 400, 404} {
		if strings.Contains(lower, fmt.Sprintf("%d", code)) {
			return fromStatus(provider, code, err)
		}
	}

	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "invalid x-api-key") || strings.Contains(lower, "api key not valid"):
		return &ProviderError{Provider: provider, Kind: ErrorKindAuth, Cause: err}
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "resource_exhausted"):
		return &ProviderError{Provider: provider, Kind: ErrorKindRateLimit, Retryable: true, Cause: err}
	case strings.Contains(lower, "timeout"):
		return &ProviderError{Provider: provider, Kind: ErrorKindTimeout, Retryable: true, Cause: err}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection reset") || strings.Contains(lower, "eof"):
		return &ProviderError{Provider: provider, Kind: ErrorKindNetwork, Retryable: true, Cause: err}
	}

	return &ProviderError{Provider: provider, Kind: ErrorKindUnknown, Cause: err}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func fromStatus(provider entity.Provider, status int, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, StatusCode: status, Cause: err}
	switch {
	case status == 401 || status == 403:
		pe.Kind = ErrorKindAuth
	case status == 429:
		pe.Kind = ErrorKindRateLimit
		pe.Retryable = true
	case status >= 500:
		pe.Kind = ErrorKindServer
		pe.Retryable = true
	case status >= 400:
		pe.Kind = ErrorKindBadRequest
	default:
		pe.Kind = ErrorKindUnknown
	}
	return pe
}
