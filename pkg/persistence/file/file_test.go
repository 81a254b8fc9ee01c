package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/persistence"
	"github.com/daryako/cascade/pkg/testutil"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	p, err := NewPersistence(t.TempDir(), slog.Default())
	require.NoError(t, err)

	return p
}

func testWorkflow(id string) *models.Workflow {
	return testutil.CreateTestWorkflow(
		testutil.WithID(id),
		testutil.WithActions(&models.WorkflowAction{
			Type:       models.ActionSendEmail,
			Parameters: map[string]any{"to": "{{event.customer_email}}"},
			RetryCount: 3,
			Timeout:    30,
		}),
	)
}

func TestSaveAndFetchWorkflow(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testWorkflow("wf-1")))

	loaded, err := p.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", loaded.ID)
	assert.Equal(t, "Test Workflow", loaded.Name)
	assert.Equal(t, models.EventInvoiceCreated, loaded.TriggerEvent)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, models.ActionSendEmail, loaded.Actions[0].Type)
	assert.Equal(t, "{{event.customer_email}}", loaded.Actions[0].Parameters["to"])
}

func TestFetchMissingWorkflow(t *testing.T) {
	p := newTestPersistence(t)

	_, err := p.WorkflowByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestSaveOverwritesRecord(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	wf := testWorkflow("wf-1")
	require.NoError(t, p.SaveWorkflow(ctx, wf))

	wf.ExecutionCount = 7
	require.NoError(t, p.SaveWorkflow(ctx, wf))

	loaded, err := p.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.ExecutionCount)
}

func TestWorkflowsSkipsMalformedRecords(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testWorkflow("wf-good")))

	dir := filepath.Join(p.root, "workflows")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wf-broken.json"), []byte("{not json"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wf-invalid.json"),
		[]byte(`{"workflow_id":"wf-invalid","name":"x","trigger_event":"bogus_event","actions":[]}`), 0600))

	workflows, err := p.Workflows(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "wf-good", workflows[0].ID)
}

func TestDeleteWorkflow(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, testWorkflow("wf-1")))
	require.NoError(t, p.DeleteWorkflow(ctx, "wf-1"))

	_, err := p.WorkflowByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestFileURLPrefixStripped(t *testing.T) {
	dir := t.TempDir()

	p, err := NewPersistence("file://"+dir, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, dir, p.root)
	assert.NoError(t, p.HealthCheck(context.Background()))
}
