package core

import (
	"fmt"
)

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone     ErrorCategory = iota // No error
	ErrCategoryInput                         // Unreadable snapshot, unknown node, bad fingerprint file
	ErrCategoryConfig                        // Invalid configuration, missing required field
	ErrCategoryJob                           // Unknown or already finished analysis job
	ErrCategoryInternal                      // Analysis panicked or returned an unexpected value
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryInput:
		return "input"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryJob:
		return "job"
	case ErrCategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ResolveError represents a structured error with category and details
type ResolveError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: invalid_snapshot, node_not_found, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same code, so wrapped copies of a
// predefined error still satisfy errors.Is against the original.
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ResolveError) WithCause(cause error) *ResolveError {
	return &ResolveError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ResolveError) WithMessage(msg string) *ResolveError {
	return &ResolveError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ResolveError) WithDetails(details map[string]interface{}) *ResolveError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ResolveError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrInvalidSnapshot = &ResolveError{
		Category: ErrCategoryInput,
		Code:     "invalid_snapshot",
		Message:  "invalid page source",
	}
	ErrNodeNotFound = &ResolveError{
		Category: ErrCategoryInput,
		Code:     "node_not_found",
		Message:  "node not found in snapshot",
	}
	ErrInvalidFingerprint = &ResolveError{
		Category: ErrCategoryInput,
		Code:     "invalid_fingerprint",
		Message:  "invalid element fingerprint",
	}

	// Config errors
	ErrInvalidConfig = &ResolveError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ResolveError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}

	// Job errors
	ErrJobNotFound = &ResolveError{
		Category: ErrCategoryJob,
		Code:     "job_not_found",
		Message:  "analysis job not found",
	}
	ErrAnalysisPanicked = &ResolveError{
		Category: ErrCategoryInternal,
		Code:     "analysis_panicked",
		Message:  "analysis panicked",
	}
)

// NewResolveError creates a new ResolveError with the given parameters
func NewResolveError(category ErrorCategory, code, message string) *ResolveError {
	return &ResolveError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
