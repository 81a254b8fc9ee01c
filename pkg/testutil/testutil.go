// Package testutil provides test data builders shared across package tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/daryako/cascade/pkg/models"
)

// CreateTestWorkflow builds a minimal valid workflow with default values
// that can be overridden.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	wf := &models.Workflow{
		ID:           uuid.New().String(),
		Name:         "Test Workflow",
		TriggerEvent: models.EventInvoiceCreated,
		Enabled:      true,
		CreatedAt:    time.Now().UTC(),
		Actions: []*models.WorkflowAction{
			{
				Type:       models.ActionSendNotification,
				Parameters: map[string]any{"message": "test"},
				RetryCount: models.DefaultRetryCount,
				Timeout:    models.DefaultTimeoutSeconds,
			},
		},
	}

	for _, override := range overrides {
		override(wf)
	}

	return wf
}

// WithID sets the workflow id.
func WithID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithTrigger sets the trigger event type and condition.
func WithTrigger(eventType models.EventType, condition string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.TriggerEvent = eventType
		w.TriggerCondition = condition
	}
}

// WithActions replaces the action list.
func WithActions(actions ...*models.WorkflowAction) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Actions = actions
	}
}

// WithDisabled marks the workflow disabled.
func WithDisabled() func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Enabled = false
	}
}
