// Package retry provides a poll-until-done primitive bounded by a wall-clock
// timeout.
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// Policy controls Poll.
type Policy struct {
	// Interval is the pause between attempts.
	Interval time.Duration
	// Timeout bounds the total time spent polling.
	Timeout time.Duration
	// Clock defaults to RealClock.
	Clock Clock
}

// TimeoutError is returned by Poll when Timeout elapses without success.
type TimeoutError struct {
	Attempts int
	Elapsed  time.Duration
	// LastErr is the transient error from the final attempt, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("gave up after %d attempts in %s", e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as terminal so Poll returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Func is one attempt. It returns done=true on success. A non-nil error is
// treated as transient unless wrapped with Permanent.
type Func func(ctx context.Context) (done bool, err error)

// Poll calls fn until it reports done, returns a Permanent error, ctx is
// cancelled, or p.Timeout elapses. The final attempt happens at or after the
// deadline, never before it.
func Poll(ctx context.Context, p Policy, fn Func) error {
	if p.Interval <= 0 {
		return fmt.Errorf("retry interval must be positive, got %s", p.Interval)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("retry timeout must be positive, got %s", p.Timeout)
	}
	clock := p.Clock
	if clock == nil {
		clock = RealClock
	}

	start := clock.Now()
	deadline := start.Add(p.Timeout)
	var lastErr error
	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if done {
			return nil
		}
		var perm *permanentError
		if stderrors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		now := clock.Now()
		if !now.Before(deadline) {
			return &TimeoutError{Attempts: attempt, Elapsed: now.Sub(start), LastErr: lastErr}
		}

		wait := p.Interval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}
}
