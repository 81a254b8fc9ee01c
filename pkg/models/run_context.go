package models

import "strconv"

// WorkflowRef is the slice of workflow identity exposed to running actions.
type WorkflowRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RunContext is the ephemeral state of one workflow execution: the triggering
// event, the identity of the running workflow, and the results accumulated by
// earlier actions. It is exclusively owned by a single run and never shared
// across concurrent executions.
type RunContext struct {
	Event    Event
	Workflow WorkflowRef
	Results  map[string]any
}

// NewRunContext builds the context for one execution of w triggered by event.
func NewRunContext(event Event, w *Workflow) *RunContext {
	return &RunContext{
		Event:    event,
		Workflow: WorkflowRef{ID: w.ID, Name: w.Name},
		Results:  map[string]any{},
	}
}

// ResultKey is the synthetic key under which the i-th action's result is
// recorded, addressable from later conditions and placeholders as
// results.action_<i>.
func ResultKey(i int) string {
	return "action_" + strconv.Itoa(i)
}

// SetResult records the result of the i-th action.
func (c *RunContext) SetResult(i int, result any) {
	c.Results[ResultKey(i)] = result
}

// AsMap renders the context as the mapping that conditions and placeholder
// paths are resolved against.
func (c *RunContext) AsMap() map[string]any {
	return map[string]any{
		"event": c.Event.AsMap(),
		"workflow": map[string]any{
			"id":   c.Workflow.ID,
			"name": c.Workflow.Name,
		},
		"results": c.Results,
	}
}
