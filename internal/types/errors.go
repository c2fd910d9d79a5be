package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Helix framework errors.
type ErrorCode string

// Governance error codes
const (
	POLICY_LOAD_FAILED       ErrorCode = "POLICY_LOAD_FAILED"
	POLICY_PARSE_FAILED      ErrorCode = "POLICY_PARSE_FAILED"
	POLICY_VALIDATION_FAILED ErrorCode = "POLICY_VALIDATION_FAILED"
)

// Registry error codes
const (
	REGISTRY_CLOSED         ErrorCode = "REGISTRY_CLOSED"
	REGISTRY_EXPORT_FAILED  ErrorCode = "REGISTRY_EXPORT_FAILED"
	DISCOVERY_PROVIDER_FAIL ErrorCode = "DISCOVERY_PROVIDER_FAIL"
)

// HelixError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type HelixError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *HelixError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *HelixError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *HelixError) Is(target error) bool {
	var helixErr *HelixError
	if errors.As(target, &helixErr) {
		return e.Code == helixErr.Code
	}
	return false
}

// NewError creates a new non-retryable HelixError with the given code and message.
func NewError(code ErrorCode, message string) *HelixError {
	return &HelixError{
		Code:    code,
		Message: message,
	}
}

// WrapError creates a new HelixError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *HelixError {
	return &HelixError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
