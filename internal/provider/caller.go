// ABOUTME: Shared call plumbing for external providers: rate limiting, retries, circuit breaking
// ABOUTME: Every LLM and embedding round-trip goes through Call
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/docweave/docweave/internal/util"
)

// Caller throttles and guards calls against one external provider.
// A shared token bucket enforces a minimum inter-call delay and a circuit
// breaker converts calls into fast failures after repeated errors.
type Caller struct {
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

// CallerConfig configures a Caller.
type CallerConfig struct {
	Name            string
	MinCallInterval time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	BreakerCooldown time.Duration
	BreakerFailures uint32
}

// NewCaller builds a Caller for the named provider.
func NewCaller(cfg CallerConfig) *Caller {
	interval := cfg.MinCallInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &Caller{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}
}

// Call runs fn with rate limiting, retries on retryable errors, and circuit
// breaking. The breaker counts one failure per exhausted retry loop, not per
// attempt, so a single flaky call does not trip it.
func Call[T any](ctx context.Context, c *Caller, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var lastErr error
		for attempt := 0; attempt <= c.maxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
				}
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			v, err := fn(ctx)
			if err == nil {
				return v, nil
			}
			lastErr = err
			if !IsRetryable(err) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%s: %d attempts exhausted: %w", op, c.maxRetries+1, lastErr)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: circuit open: %w", op, err)
		}
		return zero, err
	}
	return out.(T), nil
}
