// Package retry provides a bounded retry loop with a fixed or growing cooldown.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Cooldown is the delay before the first retry.
	Cooldown time.Duration
	// MaxCooldown caps the delay between retries (0 = no cap).
	MaxCooldown time.Duration
	// Multiplier grows the cooldown after each retry. 1 keeps it fixed.
	Multiplier float64
	// JitterFraction is the fraction of the cooldown used for jitter (0.0-1.0).
	JitterFraction float64

	// Sleep waits between attempts. Nil uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each retry with the retry number (1-based)
	// and the error that caused it.
	OnRetry func(retry int, err error)
}

// DefaultConfig returns a fixed one second cooldown with three retries.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Cooldown:   1 * time.Second,
		Multiplier: 1.0,
	}
}

// ErrorClassifier determines if an error is retryable.
type ErrorClassifier func(error) bool

// IsRetryable is the default classifier. Context errors and errors marked
// with Permanent are not retried; everything else is.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *permanentError
	return !errors.As(err, &perm)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that IsRetryable reports false for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do executes fn, retrying retryable failures up to cfg.MaxRetries times.
// Non-retryable errors are returned unchanged. When the budget is spent the
// last error is returned inside a *RetryableError.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if classifier == nil {
		classifier = IsRetryable
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	var lastErr error
	cooldown := cfg.Cooldown

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !classifier(err) {
			return err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		wait := cooldown + jitter(cooldown, cfg.JitterFraction)
		if cfg.MaxCooldown > 0 && wait > cfg.MaxCooldown {
			wait = cfg.MaxCooldown
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}

		cooldown = time.Duration(float64(cooldown) * multiplier)
		if cfg.MaxCooldown > 0 && cooldown > cfg.MaxCooldown {
			cooldown = cfg.MaxCooldown
		}
	}

	return &RetryableError{Err: lastErr, Retries: cfg.MaxRetries}
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jitter returns a random duration in range [-fraction*d, +fraction*d].
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	jitterRange := float64(d) * fraction
	jitterValue := (rand.Float64() - 0.5) * 2 * jitterRange
	return time.Duration(jitterValue)
}

// RetryableError reports a retryable failure that outlived its retry budget.
type RetryableError struct {
	Err     error
	Retries int
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("failed after %d retries: %v", e.Retries, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
