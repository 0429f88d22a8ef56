package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
}

func TestWithExponentialBackoff_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	err := WithExponentialBackoff(context.Background(), fastConfig(3), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	var retries []int
	cfg := fastConfig(5)
	cfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		retries = append(retries, attempt)
	}

	err := WithExponentialBackoff(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("controller unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	sentinel := errors.New("still down")
	attempts := 0
	err := WithExponentialBackoff(context.Background(), fastConfig(2), func(ctx context.Context) error {
		attempts++
		return sentinel
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, attempts)
}

func TestWithExponentialBackoff_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("bad credentials")
	attempts := 0
	err := WithExponentialBackoff(context.Background(), fastConfig(10), func(ctx context.Context) error {
		attempts++
		return Permanent(sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
	assert.False(t, IsPermanent(errors.New("x")))
}

func TestWithExponentialBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxRetries: -1, InitialBackoff: time.Hour, MaxBackoff: time.Hour, Multiplier: 2}

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- WithExponentialBackoff(ctx, cfg, func(ctx context.Context) error {
			attempts++
			return errors.New("fail")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	case <-time.After(time.Second):
		t.Fatal("retry did not stop after cancellation")
	}
}

func TestWithExponentialBackoff_UnlimitedRetries(t *testing.T) {
	attempts := 0
	err := WithExponentialBackoff(context.Background(), fastConfig(-1), func(ctx context.Context) error {
		attempts++
		if attempts < 20 {
			return errors.New("fail")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, attempts)
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	cfg := Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, Multiplier: 2}

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateBackoff(tt.retry, cfg), "retry %d", tt.retry)
	}
}

func TestCalculateBackoff_DefaultMultiplier(t *testing.T) {
	cfg := Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: time.Second}
	assert.Equal(t, 40*time.Millisecond, calculateBackoff(3, cfg))
}

func TestCalculateBackoff_WithJitter(t *testing.T) {
	cfg := Config{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 150 * time.Millisecond, Multiplier: 2, Jitter: true}

	for i := 0; i < 100; i++ {
		d := calculateBackoff(1, cfg)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)

		capped := calculateBackoff(3, cfg)
		assert.LessOrEqual(t, capped, 150*time.Millisecond)
	}
}
