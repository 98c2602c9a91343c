// Package wait polls UI state until a condition holds or a deadline passes.
//
// Every command in the suite funnels its retries through Until, so a failed wait always ends in a
// *TimeoutError that names what was awaited.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	k8swait "k8s.io/apimachinery/pkg/util/wait"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// Func is evaluated on every poll. It returns the observed value and whether it satisfies the wait.
// A non-nil error is treated as transient and recorded; use Stop to abort the wait instead.
type Func[T any] func(ctx context.Context) (T, bool, error)

// TimeoutError is returned when the condition never held within the timeout.
type TimeoutError struct {
	Description string
	Timeout     time.Duration
	// LastErr is the last transient error reported by the condition, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Description)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// IsTimeout reports whether err is, or wraps, a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

type stopError struct {
	err error
}

func (s *stopError) Error() string { return s.err.Error() }

func (s *stopError) Unwrap() error { return s.err }

// Stop marks err as fatal: Until returns it immediately instead of polling again.
func Stop(err error) error {
	return &stopError{err: err}
}

type options struct {
	timeout     time.Duration
	interval    time.Duration
	description string
}

// Option configures Until.
type Option func(*options)

// WithTimeout sets the total time to wait.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithInterval sets the delay between two polls.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithDescription names the awaited state in the TimeoutError.
func WithDescription(format string, args ...any) Option {
	return func(o *options) {
		o.description = fmt.Sprintf(format, args...)
	}
}

// Until polls fn immediately and then every interval until it reports done, returns a Stop error,
// ctx is cancelled, or the timeout passes. The last observed value is returned in every case.
func Until[T any](ctx context.Context, fn Func[T], opts ...Option) (T, error) {
	o := options{
		timeout:     DefaultTimeout,
		interval:    DefaultInterval,
		description: "condition",
	}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		last    T
		lastErr error
	)

	err := k8swait.PollUntilContextTimeout(ctx, o.interval, o.timeout, true, func(ctx context.Context) (bool, error) {
		value, done, err := fn(ctx)
		last = value
		if err != nil {
			var stop *stopError
			if errors.As(err, &stop) {
				return false, stop.err
			}
			lastErr = err
			return false, nil
		}
		return done, nil
	})

	if err == nil {
		return last, nil
	}

	if k8swait.Interrupted(err) {
		if ctxErr := context.Cause(ctx); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return last, fmt.Errorf("waiting for %s: %w", o.description, ctxErr)
		}
		return last, &TimeoutError{Description: o.description, Timeout: o.timeout, LastErr: lastErr}
	}

	return last, err
}

// For is Until for conditions that carry no value.
func For(ctx context.Context, fn func(ctx context.Context) (bool, error), opts ...Option) error {
	_, err := Until(ctx, func(ctx context.Context) (struct{}, bool, error) {
		done, err := fn(ctx)
		return struct{}{}, done, err
	}, opts...)
	return err
}

// Sleep blocks for d unless ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
