// Package audit records every orchestrator outcome and staged external
// action in a structured, searchable trail.
package audit

import (
	"context"
	"fmt"
	"time"
)

// Status is the result of an audited action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
)

// ApprovalStatus tracks the human-in-the-loop decision for staged artifacts.
type ApprovalStatus string

const (
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalRejected    ApprovalStatus = "rejected"
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalNotRequired ApprovalStatus = "not_required"
)

// SecurityLevel classifies how sensitive an audited action is.
type SecurityLevel string

const (
	LevelPublic       SecurityLevel = "public"
	LevelInternal     SecurityLevel = "internal"
	LevelConfidential SecurityLevel = "confidential"
	LevelRestricted   SecurityLevel = "restricted"
)

// Entry is one audit record. Zero-valued optional fields are filled with
// defaults by the sink (timestamp, actor, session, approval, security level).
type Entry struct {
	Timestamp      time.Time      `json:"timestamp"`
	SessionID      string         `json:"session_id"`
	Actor          string         `json:"actor"`
	Action         string         `json:"action"`
	Target         string         `json:"target"`
	Status         Status         `json:"status"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	Details        map[string]any `json:"details"`
	Error          string         `json:"error,omitempty"`
	DurationMS     int64          `json:"duration_ms,omitempty"`
	SecurityLevel  SecurityLevel  `json:"security_level"`
}

// Sink is the collaborator contract the orchestrator depends on. Log returns
// a handle to the stored record (a file path for the file sink).
type Sink interface {
	Log(ctx context.Context, entry Entry) (string, error)
}

// ExternalAction builds the entry shape used for staged external API calls
// (email drafts, LinkedIn posts, invoices). External actions are always
// classified confidential.
func ExternalAction(service, action, targetID string, status Status, approval ApprovalStatus, details map[string]any) Entry {
	return Entry{
		Action:         fmt.Sprintf("%s_%s", service, action),
		Target:         fmt.Sprintf("%s:%s", service, targetID),
		Status:         status,
		ApprovalStatus: approval,
		Details:        details,
		SecurityLevel:  LevelConfidential,
	}
}
