// Package sendemail stages outgoing email drafts for human approval.
package sendemail

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

// Action writes an email draft into Pending_Approval instead of sending
// anything. The send happens only after a human approves the draft.
type Action struct {
	artifacts artifact.Store
	audit     audit.Sink
	logger    *slog.Logger
}

func New(artifacts artifact.Store, sink audit.Sink, logger *slog.Logger) *Action {
	return &Action{
		artifacts: artifacts,
		audit:     sink,
		logger:    logger.With("module", "action_send_email"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionSendEmail }

func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	to := registry.StringParam(params, "to", "")
	subject := registry.StringParam(params, "subject", "")
	body := registry.StringParam(params, "body", "")
	priority := registry.StringParam(params, "priority", "normal")

	a.logger.Info("Staging email draft", "to", to, "subject", subject, "workflow_id", run.Workflow.ID)

	content := fmt.Sprintf(`# Email Draft

**To**: %s
**Subject**: %s
**Priority**: %s

## Body

%s

---
*Generated by workflow: %s*
*Awaiting approval to send*
`, to, subject, priority, body, run.Workflow.Name)

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("EMAIL")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage email draft: %w", err)
	}

	entry := audit.ExternalAction("email", "draft_created", to,
		audit.StatusPending, audit.ApprovalPending,
		map[string]any{"subject": subject, "workflow_id": run.Workflow.ID})
	if _, err := a.audit.Log(ctx, entry); err != nil {
		a.logger.Warn("Failed to audit email draft", "error", err)
	}

	return map[string]any{"status": "pending_approval", "file": path}, nil
}
