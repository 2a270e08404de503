// Package wait polls browser state until a condition holds or a deadline passes.
//
// A wait that times out is not an error: Until and Value report it through
// their boolean result. Only a condition that fails for a reason other than
// "not yet true" ends a wait with an error. Require turns a timeout into an
// errs.Timeout error for callers that cannot continue without the condition.
package wait

import (
	"context"
	"fmt"
	"time"

	"e2e_automation/domain/errs"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

// Condition reports whether the awaited state has been reached
type Condition func(ctx context.Context) (bool, error)

// Waiter holds the polling parameters. The zero value polls every
// DefaultInterval for DefaultTimeout on the wall clock.
type Waiter struct {
	// Timeout is the total wait budget. Negative means evaluate exactly once.
	Timeout time.Duration
	// Interval is the fixed pause between evaluations
	Interval time.Duration
	Clock    Clock
	// Ignore reports whether a condition error only means "not yet true".
	// Nil ignores element-not-found and stale-element errors.
	Ignore func(error) bool
}

// New returns a Waiter on the wall clock
func New(timeout, interval time.Duration) Waiter {
	return Waiter{Timeout: timeout, Interval: interval}
}

// WithTimeout returns a copy of w with a different timeout; zero keeps w's
func (w Waiter) WithTimeout(timeout time.Duration) Waiter {
	if timeout != 0 {
		w.Timeout = timeout
	}
	return w
}

// WithInterval returns a copy of w with a different interval; zero keeps w's
func (w Waiter) WithInterval(interval time.Duration) Waiter {
	if interval != 0 {
		w.Interval = interval
	}
	return w
}

// EffectiveTimeout returns the wait budget with the default applied
func (w Waiter) EffectiveTimeout() time.Duration {
	return w.timeout()
}

func (w Waiter) timeout() time.Duration {
	if w.Timeout == 0 {
		return DefaultTimeout
	}
	return w.Timeout
}

func (w Waiter) interval() time.Duration {
	if w.Interval <= 0 {
		return DefaultInterval
	}
	return w.Interval
}

func (w Waiter) clock() Clock {
	if w.Clock == nil {
		return RealClock
	}
	return w.Clock
}

func (w Waiter) ignorable(err error) bool {
	if w.Ignore != nil {
		return w.Ignore(err)
	}
	return IsNotYet(err)
}

// IsNotYet reports whether err is one of the lookup errors a poll retries through
func IsNotYet(err error) bool {
	return errs.Is(err, errs.ElementNotFound) || errs.Is(err, errs.StaleElement)
}

// Until polls cond until it returns true or the timeout elapses.
// It returns false with a nil error on timeout.
func (w Waiter) Until(ctx context.Context, cond Condition) (bool, error) {
	_, ok, err := Value(ctx, w, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := cond(ctx)
		return struct{}{}, ok, err
	})
	return ok, err
}

// Require is Until with a timeout reported as an errs.Timeout error
func (w Waiter) Require(ctx context.Context, what string, cond Condition) error {
	ok, err := w.Until(ctx, cond)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.Timeout, fmt.Sprintf("timed out after %s waiting for %s", w.timeout(), what))
	}
	return nil
}

// Value polls fn until it reports success and returns the produced value.
// On timeout it returns the zero value, false and a nil error.
//
// The condition is evaluated first without sleeping. Sleeps are clipped to
// the remaining budget and the condition gets a final evaluation at the
// deadline, so a condition that never holds returns no earlier than the
// timeout and no later than one interval after it.
func Value[T any](ctx context.Context, w Waiter, fn func(ctx context.Context) (T, bool, error)) (T, bool, error) {
	var zero T
	clock := w.clock()
	interval := w.interval()
	timeout := w.timeout()
	deadline := clock.Now().Add(timeout)

	for {
		v, ok, err := fn(ctx)
		if err != nil {
			if !w.ignorable(err) {
				return zero, false, err
			}
		} else if ok {
			return v, true, nil
		}

		now := clock.Now()
		if timeout < 0 || !now.Before(deadline) {
			return zero, false, nil
		}

		pause := interval
		if remaining := deadline.Sub(now); remaining < pause {
			pause = remaining
		}
		clock.Sleep(pause)
	}
}

// RequireValue is Value with a timeout reported as an errs.Timeout error
func RequireValue[T any](ctx context.Context, w Waiter, what string, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	v, ok, err := Value(ctx, w, fn)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, errs.New(errs.Timeout, fmt.Sprintf("timed out after %s waiting for %s", w.timeout(), what))
	}
	return v, nil
}
