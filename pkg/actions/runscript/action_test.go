package runscript

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun() *models.RunContext {
	return models.NewRunContext(
		models.NewEvent(models.EventScheduledTrigger, "scheduler", nil),
		&models.Workflow{ID: "wf-3", Name: "Nightly backup"},
	)
}

func TestExecuteAllowlisted(t *testing.T) {
	action := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := action.Execute(context.Background(), map[string]any{
		"script":          "backup.sh",
		"allowed_scripts": []any{"backup.sh", "cleanup.sh"},
	}, testRun())
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, "executed", resultMap["status"])
	assert.Equal(t, "backup.sh", resultMap["script"])
}

func TestExecuteRejectsUnlisted(t *testing.T) {
	action := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := action.Execute(context.Background(), map[string]any{
		"script":          "rm -rf /",
		"allowed_scripts": []any{"backup.sh"},
	}, testRun())

	require.ErrorIs(t, err, registry.ErrPolicyViolation)
}

func TestExecuteRejectsWithEmptyAllowList(t *testing.T) {
	action := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := action.Execute(context.Background(), map[string]any{
		"script": "backup.sh",
	}, testRun())

	require.ErrorIs(t, err, registry.ErrPolicyViolation, "no allow-list means nothing is allowed")
}
