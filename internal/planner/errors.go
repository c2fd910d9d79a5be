package planner

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents specific planner error types.
type ErrorType string

const (
	// ErrorTypeAdmission indicates the requested planner exists but is not
	// admitted to the active pool (quarantined or governance-blocked).
	ErrorTypeAdmission ErrorType = "planner_admission"

	// ErrorTypeGeneration indicates a generic generation failure.
	ErrorTypeGeneration ErrorType = "generation_failed"

	// ErrorTypeTimeout indicates a generation call exceeded its allotted time.
	ErrorTypeTimeout ErrorType = "generation_timeout"

	// ErrorTypeValidation indicates a generated plan failed the structural
	// output contract.
	ErrorTypeValidation ErrorType = "plan_validation_failed"

	// ErrorTypeNoActivePlanners indicates the eligible pool is empty even
	// after a self-heal re-discovery.
	ErrorTypeNoActivePlanners ErrorType = "no_active_planners"

	// ErrorTypeNotFound indicates an explicit name lookup failed.
	ErrorTypeNotFound ErrorType = "planner_not_found"
)

// Error is a planner-specific error with type and context.
// It implements the error interface and supports errors.Is/As.
type Error struct {
	// Type identifies the specific error type.
	Type ErrorType

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error that caused this error (optional).
	Cause error

	// Context provides additional contextual information about the error.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface for error comparison.
// Two planner errors are equal if they have the same error type.
func (e *Error) Is(target error) bool {
	var plannerErr *Error
	if errors.As(target, &plannerErr) {
		return e.Type == plannerErr.Type
	}
	return false
}

// WithContext adds contextual information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewError creates a new planner error with the given type and message.
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError wraps an existing error with planner error context.
func WrapError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewAdmissionError creates an error for a planner that exists but is not
// admitted to the active pool.
func NewAdmissionError(name, reason string) *Error {
	return NewError(ErrorTypeAdmission,
		fmt.Sprintf("planner %q is not admitted: %s", name, reason)).
		WithContext("planner", name)
}

// NewNotFoundError creates an error for a failed explicit name lookup.
func NewNotFoundError(name string) *Error {
	return NewError(ErrorTypeNotFound,
		fmt.Sprintf("planner %q is not registered", name)).
		WithContext("planner", name)
}

// NewTimeoutError creates an error for a generation call that exceeded its
// allotted time.
func NewTimeoutError(name string, timeout time.Duration) *Error {
	return NewError(ErrorTypeTimeout,
		fmt.Sprintf("planner %q exceeded generation timeout of %s", name, timeout)).
		WithContext("planner", name).
		WithContext("timeout", timeout.String())
}

// NewGenerationError wraps a planner's generation failure.
func NewGenerationError(name string, cause error) *Error {
	return WrapError(ErrorTypeGeneration,
		fmt.Sprintf("planner %q failed to generate a plan", name), cause).
		WithContext("planner", name)
}

// NewValidationError creates an error for a plan that fails the structural
// output contract.
func NewValidationError(message string) *Error {
	return NewError(ErrorTypeValidation, message)
}

// NewNoActivePlannersError creates the distinguished error for an exhausted
// eligible pool.
func NewNoActivePlannersError() *Error {
	return NewError(ErrorTypeNoActivePlanners,
		"no active planners available after self-heal")
}
