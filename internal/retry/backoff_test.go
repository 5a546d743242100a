package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  3,
		Jitter:       false,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	backoff := NewBackoff(fastConfig())

	calls := 0
	err := backoff.Retry(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	backoff := NewBackoff(fastConfig())

	calls := 0
	err := backoff.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	backoff := NewBackoff(fastConfig())

	calls := 0
	wantErr := errors.New("persistent")
	err := backoff.Retry(context.Background(), func() error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetryWithPredicateStopsOnPermanentError(t *testing.T) {
	backoff := NewBackoff(fastConfig())

	permanent := errors.New("permanent")
	calls := 0
	err := backoff.RetryWithPredicate(context.Background(), func() error {
		calls++
		return permanent
	}, func(err error) bool {
		return false
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second
	backoff := NewBackoff(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := backoff.Retry(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCalculateDelayGrowsExponentially(t *testing.T) {
	backoff := NewBackoff(BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  5,
		Jitter:       false,
	})

	assert.Equal(t, 100*time.Millisecond, backoff.GetNextDelay(1))
	assert.Equal(t, 200*time.Millisecond, backoff.GetNextDelay(2))
	assert.Equal(t, 400*time.Millisecond, backoff.GetNextDelay(3))
}

func TestCalculateDelayCapsAtMax(t *testing.T) {
	backoff := NewBackoff(BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     300 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  10,
		Jitter:       false,
	})

	assert.Equal(t, 300*time.Millisecond, backoff.GetNextDelay(5))
}

func TestCalculateDelayJitterStaysInBounds(t *testing.T) {
	cfg := DefaultBackoffConfig()
	backoff := NewBackoff(cfg)

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		for i := 0; i < 50; i++ {
			delay := backoff.GetNextDelay(attempt)
			assert.GreaterOrEqual(t, delay, time.Duration(0))
			assert.LessOrEqual(t, delay, cfg.MaxDelay)
		}
	}
}
