// Package wait pauses a workflow run for a fixed duration.
package wait

import (
	"context"
	"log/slog"
	"time"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
)

type Action struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Action {
	return &Action{logger: logger.With("module", "action_wait")}
}

func (a *Action) Type() models.ActionType { return models.ActionWait }

// Execute sleeps for the 'duration' parameter (seconds, default 1). The
// sleep respects context cancellation, so the per-action timeout still bounds
// an over-long wait and surfaces it as a retryable failure.
func (a *Action) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	seconds := registry.FloatParam(params, "duration", 1)

	a.logger.Info("Waiting", "seconds", seconds, "workflow_id", run.Workflow.ID)

	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return map[string]any{"status": "waited", "duration": seconds}, nil
}
