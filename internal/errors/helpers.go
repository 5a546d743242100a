package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewStoreError creates a store error with operation context
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreQuery, fmt.Sprintf("store %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Storage operation failed")
}

// NewTelegramError creates an error for a failed Bot API call. Retryable
// status codes are marked so transport-level callers can back off; the
// relay's own forward path never retries regardless.
func NewTelegramError(method string, statusCode int, err error) *AppError {
	appErr := Wrap(err, ErrCodeTelegramAPI, fmt.Sprintf("telegram %s failed", method)).
		WithContext("method", method).
		WithContext("status_code", statusCode)

	if statusCode >= 500 || statusCode == 429 || statusCode == 408 {
		appErr.Retryable = true
	}

	return appErr
}

// NewTagDecodeError creates an error for a present-but-malformed
// provenance tag. This is the reportable decode failure, distinct from
// the absent-marker case which is not an error at all.
func NewTagDecodeError(err error) *AppError {
	return Wrap(err, ErrCodeTagDecode, "provenance tag payload is malformed").
		WithUserMessage("Failed to send reply. Please try again later.")
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Authentication failed")
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit int, window string) *AppError {
	return New(ErrCodeRateLimit, "rate limit exceeded").
		WithContext("limit", limit).
		WithContext("window", window).
		WithUserMessage("Too many requests, please try again later")
}

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeTagDecode:
		return 400
	case ErrCodeAuthentication:
		return 401
	case ErrCodeNotFound:
		return 404
	case ErrCodeRateLimit:
		return 429
	case ErrCodeTelegramAPI:
		if IsRetryable(err) {
			return 502
		}
		return 500
	case ErrCodeStoreConnection, ErrCodeStoreQuery:
		return 503
	default:
		return 500
	}
}
