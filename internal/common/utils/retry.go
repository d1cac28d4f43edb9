package utils

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"iot-connector/internal/common/errors"
)

// RetryConfig holds configuration for retry operations.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial attempt)
	MaxAttempts int

	// Delay is the fixed delay between attempts
	Delay time.Duration

	// RetryableErrors determines which errors should trigger a retry.
	// If nil, all errors are considered retryable.
	RetryableErrors func(error) bool
}

// Retry executes a function with fixed-delay retry logic.
//
// Attempts to execute the provided function up to MaxAttempts times with a
// fixed delay between attempts. Supports context cancellation and
// configurable error filtering: a non-retryable error is returned
// immediately and unchanged.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err

			if config.RetryableErrors != nil && !config.RetryableErrors(err) {
				return err
			}

			if attempt == config.MaxAttempts {
				break
			}
		}

		select {
		case <-ctx.Done():
			if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.TimeoutError("retry wait")
			}
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(config.Delay):
		}
	}

	return lastErr
}
