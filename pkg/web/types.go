// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/daryako/cascade/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name             string                   `json:"name"              validate:"required,min=3"`
	Description      string                   `json:"description"`
	TriggerEvent     models.EventType         `json:"trigger_event"     validate:"required"`
	TriggerCondition string                   `json:"trigger_condition"`
	Actions          []*models.WorkflowAction `json:"actions"           validate:"dive"`
	Enabled          bool                     `json:"enabled"`
}

// UpdateWorkflowRequest represents the request body for replacing a workflow
// definition. Provenance fields are managed server-side and cannot be set.
type UpdateWorkflowRequest struct {
	Name             string                   `json:"name"              validate:"required,min=3"`
	Description      string                   `json:"description"`
	TriggerEvent     models.EventType         `json:"trigger_event"     validate:"required"`
	TriggerCondition string                   `json:"trigger_condition"`
	Actions          []*models.WorkflowAction `json:"actions"           validate:"dive"`
	Enabled          bool                     `json:"enabled"`
}

// PublishEventRequest represents the request body for injecting a domain
// event into the bus.
type PublishEventRequest struct {
	EventType models.EventType `json:"event_type" validate:"required"`
	Source    string           `json:"source"     validate:"required"`
	Data      map[string]any   `json:"data"`
}

// PublishEventResponse acknowledges an accepted event.
type PublishEventResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

func (r *CreateWorkflowRequest) ToWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:             r.Name,
		Description:      r.Description,
		TriggerEvent:     r.TriggerEvent,
		TriggerCondition: r.TriggerCondition,
		Actions:          r.Actions,
		Enabled:          r.Enabled,
	}
}

func (r *UpdateWorkflowRequest) ToWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:             r.Name,
		Description:      r.Description,
		TriggerEvent:     r.TriggerEvent,
		TriggerCondition: r.TriggerCondition,
		Actions:          r.Actions,
		Enabled:          r.Enabled,
	}
}
