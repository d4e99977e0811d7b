package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unavailable", err: fmt.Errorf("set: %w", ErrStoreUnavailable), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "bad conn", err: driver.ErrBadConn, want: true},
		{name: "pq connection failure", err: &pq.Error{Code: "08006"}, want: true},
		{name: "pq unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "validation", err: ErrInvalidEmoji, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransient(tt.err), tt.name)
	}
}

func TestRetryPolicy_GivesUpAfterMaxElapsed(t *testing.T) {
	t.Parallel()
	p := RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, MaxElapsedTime: 30 * time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), "test", func() error {
		calls++
		return ErrStoreUnavailable
	})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Greater(t, calls, 1)
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	p := RetryPolicy{InitialInterval: 50 * time.Millisecond, MaxInterval: 50 * time.Millisecond, MaxElapsedTime: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.Do(ctx, "test", func() error {
		calls++
		cancel()
		return ErrStoreUnavailable
	})
	require.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, 1, calls)
}

func TestNoRetry_RunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	err := NoRetry.Do(context.Background(), "test", func() error {
		calls++
		return ErrStoreUnavailable
	})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 1, calls)
}
