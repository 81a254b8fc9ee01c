package models

import "time"

// Workflow is a named, persisted automation: an ordered list of actions gated
// by a trigger event type and an optional trigger condition.
//
// ID is the persistence key; loading two definitions with the same id is not
// an error, the last one loaded wins. Provenance fields (LastExecuted,
// ExecutionCount) are mutated after every run attempt, successful or not, and
// written back to the durable record.
type Workflow struct {
	ID               string            `json:"workflow_id"                 validate:"required"`
	Name             string            `json:"name"                        validate:"required,min=3"`
	Description      string            `json:"description"`
	TriggerEvent     EventType         `json:"trigger_event"               validate:"required"`
	TriggerCondition string            `json:"trigger_condition,omitempty"`
	Actions          []*WorkflowAction `json:"actions"                     validate:"dive"`
	Enabled          bool              `json:"enabled"`
	CreatedAt        time.Time         `json:"created_at"`
	LastExecuted     *time.Time        `json:"last_executed,omitempty"`
	ExecutionCount   int               `json:"execution_count"`
}

// Normalize applies per-action defaults in place.
func (w *Workflow) Normalize() {
	for _, action := range w.Actions {
		action.ApplyDefaults()
	}
}

// MarkExecuted records a run attempt. Bookkeeping is about attempts, not
// successes: callers invoke this whether or not the run completed.
func (w *Workflow) MarkExecuted(now time.Time) {
	t := now.UTC()
	w.LastExecuted = &t
	w.ExecutionCount++
}
