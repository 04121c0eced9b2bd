// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates a caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates an external service (portal index, LLM provider) failed.
	ErrUpstream = errors.New("upstream service failure")

	// ErrNotConfigured indicates an optional collaborator has no credentials.
	ErrNotConfigured = errors.New("not configured")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// ValidationError represents input validation failures.
// It matches ErrInvalidInput via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is reports ErrInvalidInput as the error's category.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents a failed call to an external HTTP service.
type UpstreamError struct {
	Service    string
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (url=%s, status=%d): %v", e.Service, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error (url=%s): %v", e.Service, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports ErrUpstream as the error's category.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service, url string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Service:    service,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
