package createfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCreatesFile(t *testing.T) {
	action := New(artifact.NewFileStore(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)))

	run := models.NewRunContext(
		models.NewEvent(models.EventFileAdded, "fs_watcher", nil),
		&models.Workflow{ID: "wf-4", Name: "File triage"},
	)

	result, err := action.Execute(context.Background(), map[string]any{
		"path":    "Reports/summary.md",
		"content": "# Summary",
	}, run)
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, "created", resultMap["status"])

	content, err := os.ReadFile(resultMap["path"].(string))
	require.NoError(t, err)
	assert.Equal(t, "# Summary", string(content))
}

func TestExecuteRequiresPath(t *testing.T) {
	action := New(artifact.NewFileStore(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)))

	run := models.NewRunContext(
		models.NewEvent(models.EventFileAdded, "fs_watcher", nil),
		&models.Workflow{ID: "wf-4", Name: "File triage"},
	)

	_, err := action.Execute(context.Background(), map[string]any{"content": "x"}, run)
	assert.Error(t, err)
}
