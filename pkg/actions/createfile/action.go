// Package createfile writes a file inside the vault root.
package createfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

// Action creates a file at a workflow-supplied vault-relative path. Unlike
// the external actions it needs no approval: the artifact IS the output.
type Action struct {
	artifacts artifact.Store
	logger    *slog.Logger
}

func New(artifacts artifact.Store, logger *slog.Logger) *Action {
	return &Action{
		artifacts: artifacts,
		logger:    logger.With("module", "action_create_file"),
	}
}

func (a *Action) Type() models.ActionType { return models.ActionCreateFile }

func (a *Action) Execute(_ context.Context, params map[string]any, run *models.RunContext) (any, error) {
	path := registry.StringParam(params, "path", "")
	if path == "" {
		return nil, fmt.Errorf("create_file requires a 'path' parameter")
	}

	content := registry.StringParam(params, "content", "")

	full, err := a.artifacts.Create(path, []byte(content))
	if err != nil {
		return nil, err
	}

	a.logger.Info("Created file", "path", full, "workflow_id", run.Workflow.ID)

	return map[string]any{"status": "created", "path": full}, nil
}
