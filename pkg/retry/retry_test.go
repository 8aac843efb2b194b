package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errBoom  = errors.New("boom")
	errFinal = errors.New("final")
)

func isBoom(err error) bool { return errors.Is(err, errBoom) }

func fast(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
		RetryIf:      isBoom,
	}
}

func TestDo_SucceedsAfterRetryableErrors(t *testing.T) {
	calls := 0
	err := New(fast(3)).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := New(fast(2)).Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	assert.Same(t, errBoom, err)
	assert.Equal(t, 2, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := New(fast(5)).Do(context.Background(), func(context.Context) error {
		calls++
		return errFinal
	})

	assert.Same(t, errFinal, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NilRetryIfNeverRetries(t *testing.T) {
	cfg := fast(5)
	cfg.RetryIf = nil

	calls := 0
	err := New(cfg).Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetry(t *testing.T) {
	cfg := fast(3)
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) }

	err := New(cfg).Do(context.Background(), func(context.Context) error { return errBoom })

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(fast(3)).Do(ctx, func(context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelay_Capped(t *testing.T) {
	r := New(Config{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2})

	assert.Equal(t, time.Second, r.delay(1))
	assert.Equal(t, 2*time.Second, r.delay(2))
	assert.Equal(t, 3*time.Second, r.delay(5))
}

func TestCabinetConfig(t *testing.T) {
	cfg := CabinetConfig(4, isBoom)

	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.InitialDelay)
	assert.True(t, cfg.RetryIf(errBoom))
}
