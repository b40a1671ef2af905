// Package retry implements exponential-backoff retries for HTTP calls to
// the annotation server.
package retry

import (
	"context"
	"math"
	"time"
)

// Config holds the configuration for retry logic
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns a sensible default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// ErrorChecker reports whether a failed attempt should be retried.
// statusCode is 0 when the request never produced a response.
type ErrorChecker func(err error, statusCode int) bool

// Func is one attempt of the retried operation.
type Func func(attempt int) (result any, statusCode int, err error)

// Logger logs retry attempts. log.Printf satisfies it.
type Logger func(format string, args ...any)

// Options configures retry behavior
type Options struct {
	Config       Config
	ErrorChecker ErrorChecker
	Logger       Logger
	Name         string
}

// calculateDelay computes the delay for the given attempt using exponential backoff
func (c Config) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Execute runs fn with the configured retry logic. Delays honor ctx
// cancellation. The last error is returned when all attempts fail.
func Execute(ctx context.Context, opts Options, fn Func) (any, error) {
	var lastErr error

	for attempt := 0; attempt <= opts.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := opts.Config.calculateDelay(attempt - 1)
			if opts.Logger != nil {
				opts.Logger("%s retry attempt %d/%d after %v delay", opts.Name, attempt+1, opts.Config.MaxRetries+1, delay)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, statusCode, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if opts.ErrorChecker == nil || !opts.ErrorChecker(err, statusCode) || attempt == opts.Config.MaxRetries {
			return nil, err
		}
		if opts.Logger != nil {
			opts.Logger("%s retryable error (attempt %d/%d): %v", opts.Name, attempt+1, opts.Config.MaxRetries+1, err)
		}
	}

	return nil, lastErr
}
