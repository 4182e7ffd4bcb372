// Package services provides the business-logic layer between the HTTP
// handlers and the persistence, graph, and engine packages.
package services

import (
	"errors"
	"fmt"

	"github.com/rolerabbit/rabbitflow/pkg/graph"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")

	// Business logic conflicts (409 Conflict).
	ErrWorkflowArchived      = errors.New("cannot modify archived workflow")
	ErrWorkflowNotExecutable = errors.New("workflow is not executable")
	ErrNotATemplate          = errors.New("workflow is not a template")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	var validation *graph.ValidationError
	if errors.As(err, &validation) {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrWorkflowNil)
}

// IsConflictError checks if an error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowArchived) ||
		errors.Is(err, ErrWorkflowNotExecutable) ||
		errors.Is(err, ErrNotATemplate)
}
