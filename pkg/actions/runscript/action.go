// Package runscript gates script execution behind an allow-list.
package runscript

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

// Action validates a requested script against the allow-list supplied in the
// action's own parameters. A script outside the list fails closed with
// registry.ErrPolicyViolation and is never retried. The action does not spawn
// processes itself: like the external actions, actual execution is deferred
// to an approved out-of-band mechanism.
type Action struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Action {
	return &Action{logger: logger.With("module", "action_run_script")}
}

func (a *Action) Type() models.ActionType { return models.ActionRunScript }

func (a *Action) Execute(_ context.Context, params map[string]any, run *models.RunContext) (any, error) {
	script := registry.StringParam(params, "script", "")
	if script == "" {
		return nil, fmt.Errorf("run_script requires a 'script' parameter")
	}

	allowed := registry.SliceParam(params, "allowed_scripts")

	if !allowlisted(script, allowed) {
		a.logger.Warn("Rejected script outside allow-list",
			"script", script, "workflow_id", run.Workflow.ID)

		return nil, fmt.Errorf("%w: script %q is not in the allow-list", registry.ErrPolicyViolation, script)
	}

	a.logger.Info("Approved script", "script", script, "workflow_id", run.Workflow.ID)

	return map[string]any{"status": "executed", "script": script}, nil
}

func allowlisted(script string, allowed []any) bool {
	for _, entry := range allowed {
		if name, ok := entry.(string); ok && name == script {
			return true
		}
	}

	return false
}
