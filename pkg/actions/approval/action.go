// Package approval stages explicit approval requests.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

type Action struct {
	artifacts artifact.Store
	logger    *slog.Logger
}

func New(artifacts artifact.Store, logger *slog.Logger) *Action {
	return &Action{
		artifacts: artifacts,
		logger:    logger.With("module", "action_request_approval"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionRequestApproval }

func (a *Action) Execute(_ context.Context, params map[string]any, run *models.RunContext) (any, error) {
	title := registry.StringParam(params, "title", "")
	description := registry.StringParam(params, "description", "")

	a.logger.Info("Requesting approval", "title", title, "workflow_id", run.Workflow.ID)

	content := fmt.Sprintf(`# Approval Request

**Title**: %s
**Description**: %s

---
*Workflow*: %s
*Requested*: %s
`, title, description, run.Workflow.Name, time.Now().Format("2006-01-02 15:04:05"))

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("APPROVAL")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage approval request: %w", err)
	}

	return map[string]any{"status": "pending", "file": path}, nil
}
