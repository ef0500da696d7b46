package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/qapish/qapish/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	base := errors.New("boom")
	err := NewUserError("bad request body", base)

	assert.Equal(t, "bad request body: boom", err.Error())
	assert.ErrorIs(t, err, base)

	msg, ok := IsUserError(err)
	assert.True(t, ok)
	assert.Equal(t, "bad request body", msg)

	_, ok = IsUserError(base)
	assert.False(t, ok)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "sku", "QP-1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"sku":"QP-1"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return ErrCacheUnavailable
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return ErrCacheUnavailable
		}, opts)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		permanent := &RetryableError{Err: errors.New("bad url"), Retryable: false}
		err := WithRetry(ctx, func() error {
			calls++
			return permanent
		}, opts)
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
		assert.False(t, IsRetryable(err))
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := WithRetry(cctx, func() error { return ErrCacheUnavailable }, service.RetryOptions{
			MaxAttempts:  5,
			InitialDelay: time.Hour,
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrCacheUnavailable))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(errors.New("other")))
}
