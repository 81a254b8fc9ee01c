package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound indicates no record exists for the given id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidRecord indicates a persisted record that fails schema
	// validation. Loaders skip such records with a logged error instead of
	// aborting the whole load.
	ErrInvalidRecord = errors.New("invalid workflow record")
)

// WorkflowError wraps a storage failure with the operation and workflow id.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

func (e *WorkflowError) Is(target error) bool { return errors.Is(e.Err, target) }

// NewWorkflowError creates a wrapped storage error.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsWorkflowNotFound reports whether err indicates a missing record.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
