package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSink(t *testing.T) *FileSink {
	t.Helper()

	sink, err := NewFileSink(t.TempDir(), "cascade_engine", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return sink
}

func TestFileSinkLog(t *testing.T) {
	sink := testSink(t)

	path, err := sink.Log(context.Background(), Entry{
		Action: "workflow_execution",
		Target: "wf-1",
		Status: StatusSuccess,
		Details: map[string]any{
			"event":            "invoice_created",
			"actions_executed": 2,
		},
		DurationMS: 42,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry Entry
	require.NoError(t, json.Unmarshal(raw, &entry))

	assert.Equal(t, "workflow_execution", entry.Action)
	assert.Equal(t, StatusSuccess, entry.Status)
	assert.Equal(t, "cascade_engine", entry.Actor, "actor default applied")
	assert.Equal(t, ApprovalNotRequired, entry.ApprovalStatus, "approval default applied")
	assert.Equal(t, LevelInternal, entry.SecurityLevel, "security default applied")
	assert.NotEmpty(t, entry.SessionID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.EqualValues(t, 42, entry.DurationMS)
}

func TestFileSinkSessionIsStable(t *testing.T) {
	sink := testSink(t)
	ctx := context.Background()

	first, err := sink.Log(ctx, Entry{Action: "a", Target: "t", Status: StatusSuccess})
	require.NoError(t, err)
	second, err := sink.Log(ctx, Entry{Action: "b", Target: "t", Status: StatusFailure})
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each entry gets its own file")

	read := func(path string) Entry {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry Entry
		require.NoError(t, json.Unmarshal(raw, &entry))

		return entry
	}

	assert.Equal(t, read(first).SessionID, read(second).SessionID)
}

func TestFileSinkCleanup(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	path, err := sink.Log(context.Background(), Entry{Action: "old", Target: "t", Status: StatusSuccess})
	require.NoError(t, err)

	stale := time.Now().Add(-91 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, stale, stale))

	fresh, err := sink.Log(context.Background(), Entry{Action: "fresh", Target: "t", Status: StatusSuccess})
	require.NoError(t, err)

	deleted, err := sink.Cleanup(90 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, path)
	assert.FileExists(t, fresh)

	remaining, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestExternalActionEntry(t *testing.T) {
	entry := ExternalAction("email", "draft_created", "a@b.com", StatusPending, ApprovalPending, map[string]any{"subject": "Hi"})

	assert.Equal(t, "email_draft_created", entry.Action)
	assert.Equal(t, "email:a@b.com", entry.Target)
	assert.Equal(t, LevelConfidential, entry.SecurityLevel)
	assert.Equal(t, ApprovalPending, entry.ApprovalStatus)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()

	_, err := rec.Log(context.Background(), Entry{Action: "workflow_execution", Target: "wf-1", Status: StatusSuccess})
	require.NoError(t, err)
	_, err = rec.Log(context.Background(), Entry{Action: "email_draft_created", Target: "email:x", Status: StatusPending})
	require.NoError(t, err)

	assert.Len(t, rec.Entries(), 2)
	assert.Len(t, rec.ByAction("workflow_execution"), 1)
	assert.Equal(t, ApprovalNotRequired, rec.Entries()[0].ApprovalStatus)
}
