package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/persistence"
)

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	repo := NewRepository(newMemPersistence())

	created, err := repo.Create(context.Background(), &models.Workflow{
		Name:         "Expense watcher",
		TriggerEvent: models.EventExpenseRecorded,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionSendNotification},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.DefaultRetryCount, created.Actions[0].RetryCount)
	assert.Equal(t, models.DefaultTimeoutSeconds, created.Actions[0].Timeout)
}

func TestCreateRejectsInvalidWorkflows(t *testing.T) {
	repo := NewRepository(newMemPersistence())
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Workflow{
		Name: "No trigger",
	})
	require.Error(t, err)

	_, err = repo.Create(ctx, &models.Workflow{
		Name:         "Bad trigger",
		TriggerEvent: "not_a_real_event",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trigger event")

	_, err = repo.Create(ctx, &models.Workflow{
		Name:         "xx", // below the minimum name length
		TriggerEvent: models.EventEmailReceived,
	})
	require.Error(t, err)
}

func TestUpdatePreservesProvenance(t *testing.T) {
	store := newMemPersistence()
	repo := NewRepository(store)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Workflow{
		Name:         "Invoice chaser",
		TriggerEvent: models.EventInvoiceCreated,
	})
	require.NoError(t, err)

	// Simulate prior runs.
	stored, err := store.WorkflowByID(ctx, created.ID)
	require.NoError(t, err)
	stored.ExecutionCount = 9
	require.NoError(t, store.SaveWorkflow(ctx, stored))

	updated, err := repo.Update(ctx, created.ID, &models.Workflow{
		Name:         "Invoice chaser v2",
		TriggerEvent: models.EventInvoiceCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 9, updated.ExecutionCount)
	assert.Equal(t, "Invoice chaser v2", updated.Name)
}

func TestUpdateMissingWorkflow(t *testing.T) {
	repo := NewRepository(newMemPersistence())

	_, err := repo.Update(context.Background(), "ghost", &models.Workflow{
		Name:         "Ghost",
		TriggerEvent: models.EventEmailReceived,
	})
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestSetEnabled(t *testing.T) {
	repo := NewRepository(newMemPersistence())
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Workflow{
		Name:         "Toggle me",
		TriggerEvent: models.EventFileAdded,
		Enabled:      true,
	})
	require.NoError(t, err)

	toggled, err := repo.SetEnabled(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	fetched, err := repo.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Enabled)
}

func TestRepositoryHealthCheck(t *testing.T) {
	repo := NewRepository(newMemPersistence())

	msg, healthy := repo.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.NotEmpty(t, msg)

	msg, healthy = (&Repository{}).HealthCheck(context.Background())
	assert.False(t, healthy)
	assert.Contains(t, msg, "not initialized")
}
