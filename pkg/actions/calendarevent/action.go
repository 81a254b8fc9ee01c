// Package calendarevent stages calendar event drafts for human approval.
package calendarevent

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
		logger:    logger.With("module", "action_create_calendar_event"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionCreateCalendarEvent }

func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	title := registry.StringParam(params, "title", "")
	date := registry.StringParam(params, "date", "")
	timeOfDay := registry.StringParam(params, "time", "")
	duration := registry.StringParam(params, "duration", "1 hour")
	description := registry.StringParam(params, "description", "")

	a.logger.Info("Staging calendar event draft", "title", title, "date", date, "workflow_id", run.Workflow.ID)

	content := fmt.Sprintf(`# Calendar Event

**Title**: %s
**Date**: %s
**Time**: %s
**Duration**: %s

## Description

%s

---
*Generated by workflow: %s*
*Awaiting approval to create*
`, title, date, timeOfDay, duration, description, run.Workflow.Name)

	path, err := a.artifacts.Create(
		filepath.Join(artifact.PendingApprovalDir, artifact.DraftName("CALENDAR")),
		[]byte(content),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to stage calendar event draft: %w", err)
	}

	entry := audit.ExternalAction("calendar", "event_draft_created", title,
		audit.StatusPending, audit.ApprovalPending,
		map[string]any{"date": date, "workflow_id": run.Workflow.ID})
	if _, err := a.audit.Log(ctx, entry); err != nil {
		a.logger.Warn("Failed to audit calendar draft", "error", err)
	}

	return map[string]any{"status": "pending_approval", "file": path}, nil
}
