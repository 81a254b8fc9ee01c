// Package notification drops a notification note into the vault inbox.
package notification

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
		logger:    logger.With("module", "action_send_notification"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionSendNotification }

func (a *Action) Execute(_ context.Context, params map[string]any, run *models.RunContext) (any, error) {
	title := registry.StringParam(params, "title", "")
	message := registry.StringParam(params, "message", "")

	content := fmt.Sprintf(`# Notification

**Title**: %s

%s

---
*From workflow*: %s
*Time*: %s
`, title, message, run.Workflow.Name, time.Now().Format("2006-01-02 15:04:05"))

	path, err := a.artifacts.Create(
		filepath.Join(artifact.InboxDir, artifact.DraftName("NOTIFICATION")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write notification: %w", err)
	}

	a.logger.Info("Sent notification", "title", title, "workflow_id", run.Workflow.ID)

	return map[string]any{"status": "sent", "file": path}, nil
}
