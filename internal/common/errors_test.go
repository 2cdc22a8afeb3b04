package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "quota", err: NewUserError("limit reached", ErrQuotaExceeded), want: KindQuotaExceeded},
		{name: "overloaded", err: NewOverloadedError(errors.New("503")), want: KindServiceOverloaded},
		{name: "inference", err: fmt.Errorf("decode: %w", ErrInferenceFailed), want: KindInferenceFailed},
		{name: "input", err: ErrInputInvalid, want: KindInputInvalid},
		{name: "export", err: NewUserError("could not render", ErrExportFailed), want: KindExportFailed},
		{name: "transition", err: ErrInvalidTransition, want: KindInvalidState},
		{name: "busy", err: ErrOperationInProgress, want: KindInvalidState},
		{name: "other", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestOverloadedErrorMatchesBothKinds(t *testing.T) {
	cause := errors.New("status 529")
	err := NewOverloadedError(cause)

	assert.ErrorIs(t, err, ErrServiceOverloaded)
	assert.ErrorIs(t, err, ErrInferenceFailed)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewUserError("Daily limit reached", ErrQuotaExceeded))
	assert.Equal(t, "Daily limit reached", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Empty(t, UserMessage(nil))
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Logger:       DiscardLogger(),
	}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("keeps the last error kind when exhausted", func(t *testing.T) {
		err := WithRetry(ctx, func() error {
			return NewOverloadedError(nil)
		}, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrServiceOverloaded)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return &RetryableError{Err: ErrInferenceFailed, Retryable: false}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, ErrInferenceFailed)
	})

	t.Run("respects ShouldRetry", func(t *testing.T) {
		calls := 0
		custom := opts
		custom.ShouldRetry = IsRetryable
		err := WithRetry(ctx, func() error {
			calls++
			return ErrInferenceFailed
		}, custom)
		require.ErrorIs(t, err, ErrInferenceFailed)
		assert.Equal(t, 1, calls)
	})
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("debug")
	require.NoError(t, err)
	_, err = ParseLevel("loud")
	assert.Error(t, err)

	_, err = NewLogger(nil, 0, "xml")
	assert.Error(t, err)
}
