// Package retry adds bounded, linear-backoff retries to fallible operations.
package retry

import (
	"context"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
)

// Policy defines retry behavior. It is a value type and never mutated after construction.
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// DefaultPolicy is three attempts with a one second base delay.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
}

// Normalize fills zero fields with DefaultPolicy values.
func (p Policy) Normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	return p
}

// Backoff returns the delay after the given failed attempt (1-indexed): BaseDelay * attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type options struct {
	sleep   Sleeper
	onRetry func(attempt int, delay time.Duration, err error)
	retryIf func(err error) bool
}

// Option customizes a single Do call.
type Option func(*options)

// WithSleeper replaces the real sleep, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleep = s }
}

// OnRetry registers a hook called before each backoff sleep.
func OnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(o *options) { o.onRetry = fn }
}

// RetryIf overrides which errors are retried. By default everything except
// domain.IsPermanent errors is retried.
func RetryIf(fn func(err error) bool) Option {
	return func(o *options) { o.retryIf = fn }
}

// Do invokes op until it succeeds or the policy is exhausted. The last error is
// returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{
		sleep:   SleepContext,
		retryIf: func(err error) bool { return !domain.IsPermanent(err) },
	}
	for _, opt := range opts {
		opt(&o)
	}
	p = p.Normalize()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !o.retryIf(err) || attempt == p.MaxAttempts {
			break
		}

		delay := p.Backoff(attempt)
		if o.onRetry != nil {
			o.onRetry(attempt, delay, err)
		}
		if err := o.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}
