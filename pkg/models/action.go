package models

// ActionType identifies the handler a workflow action is dispatched to.
type ActionType string

const (
	ActionSendEmail           ActionType = "send_email"
	ActionCreateCalendarEvent ActionType = "create_calendar_event"
	ActionPostToLinkedIn      ActionType = "post_to_linkedin"
	ActionCreateInvoice       ActionType = "create_invoice"
	ActionRecordExpense       ActionType = "record_expense"
	ActionCreateFile          ActionType = "create_file"
	ActionRequestApproval     ActionType = "request_approval"
	ActionSendNotification    ActionType = "send_notification"
	ActionRunScript           ActionType = "run_script"
	ActionWait                ActionType = "wait"
)

// ActionTypes lists every known action type, in declaration order.
func ActionTypes() []ActionType {
	return []ActionType{
		ActionSendEmail,
		ActionCreateCalendarEvent,
		ActionPostToLinkedIn,
		ActionCreateInvoice,
		ActionRecordExpense,
		ActionCreateFile,
		ActionRequestApproval,
		ActionSendNotification,
		ActionRunScript,
		ActionWait,
	}
}

// Valid reports whether t is one of the closed set of action types.
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes() {
		if t == known {
			return true
		}
	}

	return false
}

const (
	// DefaultRetryCount is the total number of attempts per action, not the
	// number of additional retries.
	DefaultRetryCount = 3

	// DefaultTimeoutSeconds bounds a single action attempt.
	DefaultTimeoutSeconds = 30
)

// WorkflowAction is one declarative step of a workflow: an action kind, a
// parameter map that may contain {{dotted.path}} placeholders, an optional
// gating condition, and retry/timeout policy.
//
// OnSuccess and OnFailure are persisted and surfaced but advisory only: the
// engine executes actions strictly in sequence and does not branch-jump.
type WorkflowAction struct {
	Type       ActionType     `json:"action_type"          validate:"required"`
	Parameters map[string]any `json:"parameters"`
	Condition  string         `json:"condition,omitempty"`
	OnSuccess  string         `json:"on_success,omitempty"`
	OnFailure  string         `json:"on_failure,omitempty"`
	RetryCount int            `json:"retry_count"          validate:"gte=0"`
	Timeout    int            `json:"timeout"              validate:"gte=0"` // seconds
}

// ApplyDefaults fills zero-valued policy fields. Called on load and create so
// persisted records always carry explicit values.
func (a *WorkflowAction) ApplyDefaults() {
	if a.Parameters == nil {
		a.Parameters = map[string]any{}
	}

	if a.RetryCount <= 0 {
		a.RetryCount = DefaultRetryCount
	}

	if a.Timeout <= 0 {
		a.Timeout = DefaultTimeoutSeconds
	}
}
