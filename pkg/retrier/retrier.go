// Package retrier provides a bounded-retry combinator for recoverable calls.
package retrier

import (
	"context"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultDelay       = 5 * time.Second
	defaultMultiplier  = 1.0
	defaultMaxDelay    = 1 * time.Minute
)

// Retrier retries a call up to a fixed attempt budget with a configurable
// inter-attempt delay. The default configuration uses a constant delay;
// a multiplier above 1.0 turns it into exponential backoff.
type Retrier struct {
	maxAttempts int
	delay       time.Duration
	multiplier  float64
	maxDelay    time.Duration
}

// Option defines a function to configure the Retrier.
type Option func(*Retrier)

// WithMaxAttempts sets the total attempt budget (first call included).
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		r.maxAttempts = n
	}
}

// WithDelay sets the inter-attempt delay.
func WithDelay(d time.Duration) Option {
	return func(r *Retrier) {
		r.delay = d
	}
}

// WithMultiplier sets the delay growth factor between attempts.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		r.multiplier = m
	}
}

// WithMaxDelay caps the delay when a multiplier is set.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Retrier) {
		r.maxDelay = d
	}
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		maxAttempts: defaultMaxAttempts,
		delay:       defaultDelay,
		multiplier:  defaultMultiplier,
		maxDelay:    defaultMaxDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.maxAttempts < 1 {
		r.maxAttempts = 1
	}

	return r
}

// Do executes fn until it succeeds or the attempt budget is exhausted.
// The error of the last attempt is returned on exhaustion. Waiting between
// attempts respects context cancellation.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := r.delay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * r.multiplier)
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

// DoWithData executes fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
