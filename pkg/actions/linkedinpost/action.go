// Package linkedinpost stages LinkedIn post drafts for human approval.
package linkedinpost

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

type Action struct {
	artifacts artifact.Store
	audit     audit.Sink
	logger    *slog.Logger
}

func New(artifacts artifact.Store, sink audit.Sink, logger *slog.Logger) *Action {
	return &Action{
		artifacts: artifacts,
		audit:     sink,
		logger:    logger.With("module", "action_post_to_linkedin"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionPostToLinkedIn }

func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	content := registry.StringParam(params, "content", "")
	visibility := registry.StringParam(params, "visibility", "PUBLIC")
	imagePath := registry.StringParam(params, "image_path", "")

	a.logger.Info("Staging LinkedIn post draft", "workflow_id", run.Workflow.ID, "content_length", len(content))

	draft := fmt.Sprintf(`# LinkedIn Post Draft

## Content

%s

## Settings

- **Visibility**: %s
- **Has Image**: %t

---
*Generated by workflow: %s*
*Awaiting approval to post*
`, content, visibility, imagePath != "", run.Workflow.Name)

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("LINKEDIN_POST")),
		[]byte(draft),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage LinkedIn post draft: %w", err)
	}

	entry := audit.ExternalAction("linkedin", "post_draft_created", "pending",
		audit.StatusPending, audit.ApprovalPending,
		map[string]any{"content_length": len(content), "workflow_id": run.Workflow.ID})
	if _, err := a.audit.Log(ctx, entry); err != nil {
		a.logger.Warn("Failed to audit LinkedIn draft", "error", err)
	}

	return map[string]any{"status": "pending_approval", "file": path}, nil
}
