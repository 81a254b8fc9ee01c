// Package redis provides Redis-backed persistence for workflow records.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/persistence"
)

const (
	workflowKeyPrefix = "cascade:workflow:"
	workflowIndexKey  = "cascade:workflows"
)

// Persistence implements the persistence.Persistence interface on top of a
// Redis instance. Each workflow is one JSON value under
// cascade:workflow:<id>, with a set of known ids for listing.
type Persistence struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPersistence connects to the Redis instance described by the URL
// (redis://host:port/db).
func NewPersistence(url string, logger *slog.Logger) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return &Persistence{
		client: redis.NewClient(opts),
		logger: logger.With("module", "persistence.redis"),
	}, nil
}

func workflowKey(id string) string {
	return workflowKeyPrefix + id
}

// Workflows loads every workflow listed in the index set. Records that fail
// to unmarshal are skipped with a logged error.
func (rp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := rp.client.SMembers(ctx, workflowIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow ids: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := rp.WorkflowByID(ctx, id)
		if err != nil {
			if persistence.IsWorkflowNotFound(err) {
				// Index entry with no record, likely a partial delete.
				continue
			}

			rp.logger.ErrorContext(ctx, "Skipping unreadable workflow record",
				"workflow_id", id, "error", err)

			continue
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// WorkflowByID retrieves a single workflow record.
func (rp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	body, err := rp.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewWorkflowError("fetch", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("fetch", id, err)
	}

	var workflow models.Workflow

	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("unmarshal", id,
			fmt.Errorf("%w: %w", persistence.ErrInvalidRecord, err))
	}

	workflow.Normalize()

	return &workflow, nil
}

// SaveWorkflow persists the full record and registers the id in the index.
func (rp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("save", workflow.ID,
			fmt.Errorf("failed to marshal workflow: %w", err))
	}

	pipe := rp.client.TxPipeline()
	pipe.Set(ctx, workflowKey(workflow.ID), data, 0)
	pipe.SAdd(ctx, workflowIndexKey, workflow.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewWorkflowError("save", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow removes a workflow record and its index entry.
func (rp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	removed, err := rp.client.Del(ctx, workflowKey(id)).Result()
	if err != nil {
		return persistence.NewWorkflowError("delete", id, err)
	}

	if removed == 0 {
		return persistence.NewWorkflowError("delete", id, persistence.ErrWorkflowNotFound)
	}

	if err := rp.client.SRem(ctx, workflowIndexKey, id).Err(); err != nil {
		return persistence.NewWorkflowError("delete", id, err)
	}

	return nil
}

// HealthCheck pings the Redis instance.
func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}
