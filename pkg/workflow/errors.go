package workflow

import (
	"fmt"

	"github.com/daryako/cascade/pkg/models"
)

// ActionError reports an action whose dispatch failed after its retry budget
// was exhausted, or immediately for policy violations and missing handlers.
// It aborts the remaining actions of its workflow run.
type ActionError struct {
	WorkflowID string
	Index      int
	Type       models.ActionType
	Attempts   int
	Err        error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s) of workflow %s failed after %d attempt(s): %v",
		e.Index, e.Type, e.WorkflowID, e.Attempts, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
