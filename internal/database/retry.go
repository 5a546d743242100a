package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tgrelay/internal/constants"
)

// retryableStoreOperation executes a store operation with bounded retry.
// Only transient SQLite failures are retried; everything else surfaces
// immediately.
func retryableStoreOperation(ctx context.Context, operation func() error, operationName string) error {
	var lastErr error

	maxAttempts := constants.DefaultDatabaseRetryAttempts
	initialBackoff := time.Duration(constants.DefaultBackoffInitialMs) * time.Millisecond

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryableStoreError(err) {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		backoff := time.Duration(attempt) * initialBackoff
		if backoff > time.Duration(constants.DefaultBackoffMaxMs)*time.Millisecond {
			backoff = time.Duration(constants.DefaultBackoffMaxMs) * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxAttempts, lastErr)
}

// isRetryableStoreError determines if a store error is worth retrying
func isRetryableStoreError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()

	// Lock contention between the webhook handler and a drain cycle is
	// expected and transient.
	if strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "database table is locked") {
		return true
	}

	if strings.Contains(errStr, "disk I/O error") {
		return true
	}

	return false
}
