package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/Veraticus/qflow/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "wrapped rate limit", err: fmt.Errorf("sheets: %w", ErrRateLimit), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("flaky"), Retryable: true}, want: true},
		{name: "non-retryable wrapper", err: &RetryableError{Err: errors.New("bad"), Retryable: false}, want: false},
		{name: "google 429", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: true},
		{name: "google 503", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, want: true},
		{name: "google 404", err: &googleapi.Error{Code: http.StatusNotFound}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "not found", err: ErrNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &googleapi.Error{Code: http.StatusInternalServerError}
			}
			return nil
		}, fastRetry)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		permanent := errors.New("invalid range")
		err := WithRetry(context.Background(), func() error {
			calls++
			return permanent
		}, fastRetry)

		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrRateLimit
		}, fastRetry)

		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrRateLimit)
		assert.Equal(t, 3, calls)
	})

	t.Run("honors cancellation between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			cancel()
			return &RetryableError{Err: errors.New("flaky"), Retryable: true}
		}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestUserError(t *testing.T) {
	err := NewUserError("Google Sheets is not configured", ErrMissingConfig)

	assert.Equal(t, "Google Sheets is not configured: missing configuration", err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Google Sheets is not configured", userErr.UserMessage)

	assert.Equal(t, "just a message", NewUserError("just a message", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "debug"}, {in: "INFO"}, {in: ""}, {in: "warning"}, {in: "error"},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
