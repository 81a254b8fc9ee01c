// Package expense stages expense records for human approval.
package expense

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

type Action struct {
	artifacts artifact.Store
	audit     audit.Sink
	logger    *slog.Logger
}

func New(artifacts artifact.Store, sink audit.Sink, logger *slog.Logger) *Action {
	return &Action{
		artifacts: artifacts,
		audit:     sink,
		logger:    logger.With("module", "action_record_expense"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionRecordExpense }

func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	name := registry.StringParam(params, "name", "")
	amount := registry.FloatParam(params, "amount", 0)
	category := registry.StringParam(params, "category", "uncategorized")
	expenseDate := registry.StringParam(params, "date", time.Now().Format("2006-01-02"))

	a.logger.Info("Staging expense record", "name", name, "amount", amount, "workflow_id", run.Workflow.ID)

	content := fmt.Sprintf(`# Expense Record

**Name**: %s
**Amount**: $%.2f
**Category**: %s
**Date**: %s

---
*Generated by workflow: %s*
*Awaiting approval to record*
`, name, amount, category, expenseDate, run.Workflow.Name)

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("EXPENSE")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage expense record: %w", err)
	}

	entry := audit.ExternalAction("accounting", "expense_draft_created", name,
		audit.StatusPending, audit.ApprovalPending,
		map[string]any{"amount": amount, "workflow_id": run.Workflow.ID})
	if _, err := a.audit.Log(ctx, entry); err != nil {
		a.logger.Warn("Failed to audit expense record", "error", err)
	}

	return map[string]any{"status": "pending_approval", "file": path, "amount": amount}, nil
}
