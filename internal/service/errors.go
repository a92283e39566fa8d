package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskHasNoDueDate indicates a legacy task row carries no usable due
	// timestamp, so its timezone fields cannot be derived.
	ErrTaskHasNoDueDate = errors.New("task has no due date")

	// ErrMissingTimezoneData indicates a task lacks the canonical timezone
	// fields required for the requested operation.
	ErrMissingTimezoneData = errors.New("task is missing timezone data")
)

// PlannerServiceError is a custom error type for planner service errors.
type PlannerServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for PlannerServiceError.
func (e *PlannerServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planner service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("planner service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PlannerServiceError) Unwrap() error {
	return e.Err
}

// NewPlannerServiceError creates a new PlannerServiceError.
func NewPlannerServiceError(operation, message string, err error) *PlannerServiceError {
	return &PlannerServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
