// Package common provides the shared execution machinery for the
// knowledge-source adapters: the retry-with-backoff combinator, the ordered
// fan-out executor used by the batch orchestrator, and the metrics contract.
package common

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy governs how a failed oracle call is retried.
type RetryPolicy struct {
	MaxAttempts       int           `json:"max_attempts" yaml:"max_attempts"`
	InitialBackoff    time.Duration `json:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff        time.Duration `json:"max_backoff" yaml:"max_backoff"`
	BackoffMultiplier float64       `json:"backoff_multiplier" yaml:"backoff_multiplier"`
}

// DefaultRetryPolicy matches the pipeline defaults: three attempts with a
// one-second initial backoff doubling per attempt, capped at ten seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffFor returns the delay before the attempt-th retry (zero-based),
// applying exponential backoff with ±25% jitter capped at MaxBackoff.
func backoffFor(attempt int, policy RetryPolicy) time.Duration {
	if policy.InitialBackoff <= 0 {
		return 0
	}
	multiplier := policy.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	base := float64(policy.InitialBackoff) * math.Pow(multiplier, float64(attempt))
	if policy.MaxBackoff > 0 && base > float64(policy.MaxBackoff) {
		base = float64(policy.MaxBackoff)
	}
	jitter := base * 0.25 * (rand.Float64()*2 - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as not worth retrying (e.g. a 4xx API rejection).
// Retry unwraps the marker before returning it to the caller.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs op up to policy.MaxAttempts times, sleeping with exponential
// backoff between attempts. Context cancellation and Permanent-marked errors
// stop retrying immediately and are never retried. Every oracle adapter
// shares this combinator rather than hand-rolling its own loop.
func Retry[R any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (R, error)) (R, error) {
	var zero R
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoffFor(attempt-1, policy)):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err
	}
	return zero, lastErr
}
