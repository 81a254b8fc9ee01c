// Package models defines the core domain models for event-driven workflow automation.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what kind of domain fact an Event describes.
type EventType string

const (
	EventEmailReceived    EventType = "email_received"
	EventCalendarEvent    EventType = "calendar_event"
	EventInvoiceCreated   EventType = "invoice_created"
	EventExpenseRecorded  EventType = "expense_recorded"
	EventLinkedInPost     EventType = "linkedin_post"
	EventFileAdded        EventType = "file_added"
	EventApprovalReceived EventType = "approval_received"
	EventScheduledTrigger EventType = "scheduled_trigger"
	EventManualTrigger    EventType = "manual_trigger"
)

// EventTypes lists every known event type, in declaration order.
func EventTypes() []EventType {
	return []EventType{
		EventEmailReceived,
		EventCalendarEvent,
		EventInvoiceCreated,
		EventExpenseRecorded,
		EventLinkedInPost,
		EventFileAdded,
		EventApprovalReceived,
		EventScheduledTrigger,
		EventManualTrigger,
	}
}

// Valid reports whether t is one of the closed set of event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// Event is an immutable fact describing something that happened in a
// connected system. Producers construct it immediately before handing it to
// the orchestrator; the core never mutates or persists it.
type Event struct {
	ID        string         `json:"event_id"`
	Type      EventType      `json:"event_type" validate:"required"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an Event with a type-prefixed unique id and the current
// time. The id prefix keeps audit trails and logs greppable by event kind.
func NewEvent(eventType EventType, source string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}

	return Event{
		ID:        fmt.Sprintf("%s_%s", idPrefix(eventType), uuid.New().String()[:8]),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func idPrefix(eventType EventType) string {
	if idx := strings.IndexByte(string(eventType), '_'); idx > 0 {
		return string(eventType)[:idx]
	}

	return string(eventType)
}

// AsMap renders the event as the mapping exposed to condition expressions and
// parameter placeholders ({event: ...} context).
func (e Event) AsMap() map[string]any {
	return map[string]any{
		"event_id":   e.ID,
		"event_type": string(e.Type),
		"source":     e.Source,
		"data":       e.Data,
		"timestamp":  e.Timestamp.Format(time.RFC3339),
	}
}
