package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/norandom/x-likes-scraper/pkg/errors"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &FixedBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return apierrors.NewNetwork("connection reset")
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return apierrors.NewHTTP(503)
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts")
}

func TestDoStopsOnFatalError(t *testing.T) {
	calls := 0
	fatal := apierrors.NewInvalidCredentials("bad cookies")
	err := Do(func() error {
		calls++
		return fatal
	}, fastConfig(5))

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls, "non-retryable errors must fail fast")
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &Config{
		MaxAttempts: 10,
		Backoff:     &FixedBackoff{Delay: time.Hour},
		RetryIf:     DefaultRetryIf,
		Context:     ctx,
	}

	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			return apierrors.NewNetwork("down")
		}, cfg)
	}()

	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry loop did not stop on cancellation")
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (int, error) {
		calls++
		if calls < 2 {
			return 0, apierrors.NewNetwork("flaky")
		}
		return 42, nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return apierrors.NewHTTP(502)
	}, cfg)

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.True(t, DefaultRetryIf(apierrors.NewNetwork("down")))
	assert.True(t, DefaultRetryIf(apierrors.NewHTTP(500)))
	assert.False(t, DefaultRetryIf(apierrors.NewInvalidCredentials("bad")))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(fmt.Errorf("unknown error")))
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, time.Second, eb.NextDelay(1))
	assert.Equal(t, 2*time.Second, eb.NextDelay(2))
	assert.Equal(t, 4*time.Second, eb.NextDelay(3))
	assert.Equal(t, 10*time.Second, eb.NextDelay(10), "delay must be capped")
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := DefaultExponentialBackoff()

	for attempt := 1; attempt <= 6; attempt++ {
		for i := 0; i < 20; i++ {
			delay := eb.NextDelay(attempt)
			assert.GreaterOrEqual(t, delay, time.Duration(0))
			assert.LessOrEqual(t, delay, 66*time.Second, "jitter must stay near the cap")
		}
	}
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Wait(ctx, time.Hour))
}
