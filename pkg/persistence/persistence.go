// Package persistence provides the storage abstraction for workflow records.
package persistence

import (
	"context"

	"github.com/daryako/cascade/pkg/models"
)

// Persistence stores one durable record per workflow_id. Save is a full
// overwrite of the record, idempotent, never an append log. Implementations
// must make Save atomic per workflow id so concurrent bookkeeping writes
// cannot interleave into a corrupt record; callers serialize
// read-modify-write cycles for the same id themselves.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
