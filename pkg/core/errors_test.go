package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestResolveError_Error(t *testing.T) {
	err := &ResolveError{
		Category: ErrCategoryInput,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestResolveError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ResolveError{
		Category: ErrCategoryInput,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestResolveError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ResolveError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestResolveError_WithCause(t *testing.T) {
	original := ErrInvalidSnapshot
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestResolveError_WithMessage(t *testing.T) {
	original := ErrNodeNotFound
	newErr := original.WithMessage("node 42 not found")

	if newErr.Message != "node 42 not found" {
		t.Errorf("Message = %q, want 'node 42 not found'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "node 42 not found" {
		t.Error("WithMessage() modified original error")
	}
}

func TestResolveError_WithDetails(t *testing.T) {
	original := &ResolveError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"node":  12,
		"field": "weights",
	})

	if newErr.Details["node"] != 12 {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["node"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ResolveError
		category ErrorCategory
		code     string
	}{
		{ErrInvalidSnapshot, ErrCategoryInput, "invalid_snapshot"},
		{ErrNodeNotFound, ErrCategoryInput, "node_not_found"},
		{ErrInvalidFingerprint, ErrCategoryInput, "invalid_fingerprint"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrMissingRequired, ErrCategoryConfig, "missing_required"},
		{ErrJobNotFound, ErrCategoryJob, "job_not_found"},
		{ErrAnalysisPanicked, ErrCategoryInternal, "analysis_panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewResolveError(t *testing.T) {
	err := NewResolveError(ErrCategoryJob, "custom_error", "custom message")

	if err.Category != ErrCategoryJob {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryJob)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}

func TestResolveError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInvalidConfig.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("errors.Is() should match the predefined error by code")
	}
	if errors.Is(err, ErrJobNotFound) {
		t.Error("errors.Is() should not match a different code")
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !errors.Is(wrapped, ErrInvalidConfig) {
		t.Error("errors.Is() should see through fmt wrapping")
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryInput, "input"},
		{ErrCategoryConfig, "config"},
		{ErrCategoryJob, "job"},
		{ErrCategoryInternal, "internal"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", int(tt.category), got, tt.want)
		}
	}
}
