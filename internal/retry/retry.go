// Package retry runs a model call again when the provider throttles it.
//
// Only errors accepted by Policy.ShouldRetry are retried. Everything else
// fails fast on the first attempt, including timeouts and connection resets.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	DefaultBackoff      = 2.0
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// Backoff multiplies the delay after every retry.
	Backoff float64
	// ShouldRetry reports whether err is transient. A nil ShouldRetry
	// never retries.
	ShouldRetry func(err error) bool
	// Sleep defaults to a context aware timer.
	Sleep SleepFunc
}

// DefaultPolicy returns 3 retries starting at one second and doubling.
func DefaultPolicy(shouldRetry func(error) bool) Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Backoff:      DefaultBackoff,
		ShouldRetry:  shouldRetry,
	}
}

// Do invokes op until it succeeds, returns an error ShouldRetry rejects, or
// the retry budget is spent. The first success is returned immediately.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	retries := p.MaxRetries
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if retries <= 0 || p.ShouldRetry == nil || !p.ShouldRetry(err) {
			return zero, err
		}

		slog.Warn("Rate limited, retrying", "attempt", attempt, "delay", delay, "retries_left", retries)
		if serr := sleep(ctx, delay); serr != nil {
			return zero, errors.Join(err, serr)
		}

		retries--
		delay = time.Duration(float64(delay) * p.Backoff)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
