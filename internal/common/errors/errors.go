// Package errors provides standardized error handling for the intake and
// catalog APIs.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeWriteFailed     ErrorCode = "WRITE_FAILED"
	ErrCodeUpstreamError   ErrorCode = "UPSTREAM_ERROR"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// RateLimitScope distinguishes the two fixed-window limiter scopes.
type RateLimitScope string

const (
	ScopeAPIKey  RateLimitScope = "api-key"
	ScopeCompany RateLimitScope = "company"
	ScopeAddress RateLimitScope = "address"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Fields    []string  `json:"fields,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps an error code to the HTTP status the transport layer sends.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeWriteFailed, ErrCodeUpstreamError, ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewUnauthorizedError creates a non-retryable authentication error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Missing or invalid Authorization header",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a rate-limit error for the given scope.
// Retryable: the caller may retry once the fixed window resets.
func NewRateLimitedError(scope RateLimitScope, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   message,
		Details:   fmt.Sprintf("scope: %s", scope),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable validation error carrying every
// violated field, never just the first one.
func NewValidationError(fields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationError,
		Message:   fmt.Sprintf("Missing or invalid fields: %s", strings.Join(fields, ", ")),
		Fields:    fields,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationMessageError creates a validation error with an explicit
// message instead of the joined field list.
func NewValidationMessageError(message string, fields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationError,
		Message:   message,
		Fields:    fields,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup error.
func NewNotFoundError(companyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("No profile found for company_id: %s", companyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWriteFailedError creates a retryable backing-store write error.
func NewWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWriteFailed,
		Message:   "Failed to create lead record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError creates a retryable backing-store error (unreachable or
// non-2xx response).
func NewUpstreamError(status int, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamError,
		Message:   fmt.Sprintf("Backing store request failed with status %d", status),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates the catch-all error.
func NewInternalError(err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Internal server error",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// IsUpstream reports whether err is a backing-store failure.
func IsUpstream(err error) bool {
	se, ok := err.(*StandardError)
	return ok && se.Code == ErrCodeUpstreamError
}

// AsStandard converts any error into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StandardError); ok {
		return se
	}
	return NewInternalError(err)
}
