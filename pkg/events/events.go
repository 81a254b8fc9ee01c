// Package events defines the envelopes that travel over the event bus.
//
// Domain events (models.Event) describe facts from connected systems; the
// envelopes here wrap them for transport and carry orchestration lifecycle
// notifications back out.
package events

import (
	"time"

	"github.com/daryako/cascade/pkg/models"
)

type EventType string

// Topic is the single bus topic all cascade envelopes travel on.
const Topic = "cascade.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	EventReceivedType     EventType = "event.received"
	WorkflowsExecutedType EventType = "workflows.executed"
	WorkflowFailedType    EventType = "workflow.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	WorkerID  string    `json:"worker_id,omitempty"`
}

// EventReceived wraps a domain event on its way to the orchestrator.
type EventReceived struct {
	BaseEvent

	Event models.Event `json:"event"`
}

func (e EventReceived) GetType() EventType {
	return EventReceivedType
}

// WorkflowsExecuted reports the outcome of routing one domain event.
type WorkflowsExecuted struct {
	BaseEvent

	EventID     string        `json:"event_id"`
	WorkflowIDs []string      `json:"workflow_ids"`
	Duration    time.Duration `json:"duration"`
}

func (e WorkflowsExecuted) GetType() EventType {
	return WorkflowsExecutedType
}

// WorkflowFailed reports a workflow run that aborted.
type WorkflowFailed struct {
	BaseEvent

	EventID    string `json:"event_id"`
	WorkflowID string `json:"workflow_id"`
	Error      string `json:"error"`
}

func (e WorkflowFailed) GetType() EventType {
	return WorkflowFailedType
}
