// Package workflow holds the workflow repository and the event orchestrator.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/persistence"
)

// Repository fronts the persistence layer with validation and defaulting.
// Records never reach storage without passing structural validation.
type Repository struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

func NewRepository(persistence persistence.Persistence) *Repository {
	return &Repository{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (r *Repository) HealthCheck(ctx context.Context) (string, bool) {
	if r.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := r.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

func (r *Repository) FetchAll(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := r.persistence.Workflows(ctx)
	if err != nil {
		return make([]*models.Workflow, 0), err
	}

	return workflows, nil
}

func (r *Repository) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return r.persistence.WorkflowByID(ctx, id)
}

// Create registers a new workflow. A missing id is filled with a UUID, and
// every action gets the default retry and timeout budget when unset.
func (r *Repository) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	workflow.CreatedAt = time.Now().UTC()
	workflow.Normalize()

	if err := r.validate.Struct(workflow); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	if !workflow.TriggerEvent.Valid() {
		return nil, fmt.Errorf("invalid workflow: unknown trigger event %q", workflow.TriggerEvent)
	}

	if err := r.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

// Update replaces the stored definition while preserving creation time and
// execution bookkeeping.
func (r *Repository) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := r.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.ID = id
	workflow.CreatedAt = existing.CreatedAt
	workflow.LastExecuted = existing.LastExecuted
	workflow.ExecutionCount = existing.ExecutionCount
	workflow.Normalize()

	if err := r.validate.Struct(workflow); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	if !workflow.TriggerEvent.Valid() {
		return nil, fmt.Errorf("invalid workflow: unknown trigger event %q", workflow.TriggerEvent)
	}

	if err := r.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

// SetEnabled flips the enabled flag on a stored workflow.
func (r *Repository) SetEnabled(ctx context.Context, id string, enabled bool) (*models.Workflow, error) {
	existing, err := r.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Enabled = enabled

	if err := r.persistence.SaveWorkflow(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.persistence.DeleteWorkflow(ctx, id)
}

// Save writes a workflow back without revalidating, for bookkeeping updates
// on records that were already validated on the way in.
func (r *Repository) Save(ctx context.Context, workflow *models.Workflow) error {
	return r.persistence.SaveWorkflow(ctx, workflow)
}
