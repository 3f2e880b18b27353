package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollSucceedsAfterMisses(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	attempts := 0

	err := Poll(context.Background(), Policy{Interval: time.Second, Timeout: time.Minute, Clock: clock},
		func(ctx context.Context) (bool, error) {
			attempts++
			if attempts < 4 {
				return false, fmt.Errorf("miss %d", attempts)
			}
			return true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.Sleeps())
}

func TestPollTimesOutAtDeadline(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
	}{
		{"interval divides timeout", 500 * time.Millisecond, 3 * time.Second},
		{"interval does not divide timeout", 700 * time.Millisecond, 2 * time.Second},
		{"interval longer than timeout", 5 * time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Unix(1000, 0)
			clock := NewFakeClock(start)
			transient := stderrors.New("connection refused")

			err := Poll(context.Background(), Policy{Interval: tt.interval, Timeout: tt.timeout, Clock: clock},
				func(ctx context.Context) (bool, error) { return false, transient })

			var timeoutErr *TimeoutError
			require.True(t, stderrors.As(err, &timeoutErr))
			assert.Equal(t, tt.timeout, timeoutErr.Elapsed, "timeout must fire exactly at the deadline")
			assert.Equal(t, tt.timeout, clock.Now().Sub(start))
			assert.ErrorIs(t, err, transient)
			assert.GreaterOrEqual(t, timeoutErr.Attempts, 2)
		})
	}
}

func TestPollPermanentError(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	boom := stderrors.New("bad config")
	attempts := 0

	err := Poll(context.Background(), Policy{Interval: time.Second, Timeout: time.Minute, Clock: clock},
		func(ctx context.Context) (bool, error) {
			attempts++
			return false, Permanent(boom)
		})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.Sleeps())
}

func TestPollHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, Policy{Interval: time.Hour, Timeout: 2 * time.Hour},
		func(ctx context.Context) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollRejectsInvalidPolicy(t *testing.T) {
	noop := func(ctx context.Context) (bool, error) { return true, nil }
	assert.Error(t, Poll(context.Background(), Policy{Interval: 0, Timeout: time.Second}, noop))
	assert.Error(t, Poll(context.Background(), Policy{Interval: time.Second, Timeout: 0}, noop))
}

func TestPollRealClock(t *testing.T) {
	start := time.Now()
	err := Poll(context.Background(), Policy{Interval: 10 * time.Millisecond, Timeout: 50 * time.Millisecond},
		func(ctx context.Context) (bool, error) { return false, nil })

	var timeoutErr *TimeoutError
	require.True(t, stderrors.As(err, &timeoutErr))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
