package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
)

func TestToRetryOptions_LimitsAttempts(t *testing.T) {
	cfg := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := retry.Do(func() error {
		calls++
		return errors.New("boom")
	}, cfg.ToRetryOptions()...)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestToRetryOptions_ZeroAttemptsMeansSingleTry(t *testing.T) {
	cfg := &RetryConfig{Delay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	_ = retry.Do(func() error {
		calls++
		return errors.New("boom")
	}, cfg.ToRetryOptions()...)

	assert.Equal(t, 1, calls)
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, uint(3), cfg.Attempts)
	assert.Less(t, cfg.Delay, cfg.MaxDelay)
}
