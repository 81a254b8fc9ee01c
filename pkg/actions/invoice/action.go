// Package invoice stages invoice drafts for human approval before anything
// is posted to the accounting system.
package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
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
		logger:    logger.With("module", "action_create_invoice"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionCreateInvoice }

func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	customerID := registry.StringParam(params, "customer_id", "")
	invoiceDate := registry.StringParam(params, "invoice_date", time.Now().Format("2006-01-02"))
	items := registry.SliceParam(params, "items")

	a.logger.Info("Staging invoice draft", "customer_id", customerID, "items", len(items), "workflow_id", run.Workflow.ID)

	var lines strings.Builder

	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		fmt.Fprintf(&lines, "- %s: %v x $%v\n",
			registry.StringParam(item, "name", "item"), item["quantity"], item["price"])
	}

	content := fmt.Sprintf(`# Invoice Draft

**Customer ID**: %s
**Date**: %s

## Line Items

%s
---
*Generated by workflow: %s*
*Awaiting approval to post*
`, customerID, invoiceDate, lines.String(), run.Workflow.Name)

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("INVOICE")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage invoice draft: %w", err)
	}

	entry := audit.ExternalAction("accounting", "invoice_draft_created", "customer_"+customerID,
		audit.StatusPending, audit.ApprovalPending,
		map[string]any{"items_count": len(items), "workflow_id": run.Workflow.ID})
	if _, err := a.audit.Log(ctx, entry); err != nil {
		a.logger.Warn("Failed to audit invoice draft", "error", err)
	}

	return map[string]any{"status": "pending_approval", "file": path}, nil
}
