// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors. These never fail an audit, they short-circuit it.
	ErrNoSlots  = errors.New("no meal slots to audit")
	ErrNoDishes = errors.New("no dishes extracted")

	// Classification errors.
	ErrClassificationFailed = errors.New("classification failed")
	ErrUnknownConflictType  = errors.New("unknown conflict type")

	// Upstream errors.
	ErrEmptyPayload = errors.New("upstream returned empty payload")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error codes reported to callers.
const (
	CodeAPI        = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// UpstreamError reports a failed request to an external service.
// StatusCode is 0 for network failures.
type UpstreamError struct {
	Err        error
	Endpoint   string
	Body       string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network request to %s failed: %v", e.Endpoint, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.Endpoint, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ValidationError reports an upstream payload that does not have the expected shape.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation failed for %s", e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Classify maps an error to a caller-facing code and a details string.
func Classify(err error) (code, details string) {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return CodeAPI, fmt.Sprintf("%s returned %d", upstreamErr.Endpoint, upstreamErr.StatusCode)
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return CodeValidation, "Field: " + validationErr.Field
	}

	if err == nil {
		return "", ""
	}
	return CodeInternal, err.Error()
}
