package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProviderUnavailable is returned when the detection provider cannot be reached
	ErrProviderUnavailable = errors.New("detection provider unavailable")
)

// ValidationError reports a malformed report request. Fields lists every
// offending field path so the caller can fix the whole payload in one pass.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// Unwrap returns the sentinel validation error
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ProviderError reports a failed detection-provider query. It carries the
// stream and UTC query date so the caller can tell which query broke, plus
// the raw error detail from the provider.
type ProviderError struct {
	StreamID   string
	Date       string // UTC query date, YYYY-MM-DD
	StatusCode int    // Zero for transport-level failures
	Detail     string
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider query failed for stream %s on %s: status %d: %s",
			e.StreamID, e.Date, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("provider query failed for stream %s on %s: %s", e.StreamID, e.Date, e.Detail)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrProviderUnavailable
}
