// Package file provides file-based persistence with one JSON record per workflow.
package file

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/persistence"
)

//go:embed schema.json
var workflowSchema []byte

// Persistence implements the persistence.Persistence interface using the
// file system. Each workflow lives at <root>/workflows/<id>.json and writes
// go through a temp file plus rename so a crash never leaves a half-written
// record behind.
type Persistence struct {
	root   string
	schema *gojsonschema.Schema
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix on root is accepted and stripped.
func NewPersistence(root string, logger *slog.Logger) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(workflowSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow schema: %w", err)
	}

	return &Persistence{
		root:   cleanRoot,
		schema: schema,
		logger: logger.With("module", "persistence.file"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (fp *Persistence) workflowsDir() string {
	return path.Join(fp.root, "workflows")
}

func (fp *Persistence) workflowPath(id string) string {
	return filepath.Clean(path.Join(fp.workflowsDir(), id+".json"))
}

// lockFor returns the per-workflow mutex, creating it on first use. Keeping
// one lock per id lets unrelated workflows save concurrently while writes to
// the same record stay serialized.
func (fp *Persistence) lockFor(id string) *sync.Mutex {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	lock, ok := fp.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		fp.locks[id] = lock
	}

	return lock
}

// Workflows loads every workflow record under the root. Malformed or
// schema-invalid records are skipped with a logged error so one corrupt file
// cannot take the whole store down.
func (fp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	if _, err := os.Stat(fp.workflowsDir()); os.IsNotExist(err) {
		return []*models.Workflow{}, nil
	}

	root := os.DirFS(fp.workflowsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := file[:len(file)-len(".json")]

		workflow, err := fp.WorkflowByID(ctx, workflowID)
		if err != nil {
			fp.logger.ErrorContext(ctx, "Skipping unreadable workflow record",
				"workflow_id", workflowID, "error", err)

			continue
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].ID < workflows[j].ID
	})

	return workflows, nil
}

// WorkflowByID retrieves a single workflow record, validating it against the
// record schema before unmarshaling.
func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	body, err := os.ReadFile(fp.workflowPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("fetch", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("fetch", id, err)
	}

	result, err := fp.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, persistence.NewWorkflowError("validate", id,
			fmt.Errorf("%w: %w", persistence.ErrInvalidRecord, err))
	}

	if !result.Valid() {
		return nil, persistence.NewWorkflowError("validate", id,
			fmt.Errorf("%w: %s", persistence.ErrInvalidRecord, schemaFailures(result)))
	}

	var workflow models.Workflow

	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("unmarshal", id,
			fmt.Errorf("%w: %w", persistence.ErrInvalidRecord, err))
	}

	workflow.Normalize()

	return &workflow, nil
}

// SaveWorkflow persists the full record, overwriting any previous version.
func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(fp.workflowsDir(), 0750); err != nil {
		return persistence.NewWorkflowError("save", workflow.ID,
			fmt.Errorf("failed to create workflows directory: %w", err))
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("save", workflow.ID,
			fmt.Errorf("failed to marshal workflow: %w", err))
	}

	lock := fp.lockFor(workflow.ID)
	lock.Lock()
	defer lock.Unlock()

	tmpPath := path.Join(fp.workflowsDir(), "."+workflow.ID+"."+uuid.NewString()[:8]+".tmp")

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return persistence.NewWorkflowError("save", workflow.ID, err)
	}

	if err := os.Rename(tmpPath, fp.workflowPath(workflow.ID)); err != nil {
		_ = os.Remove(tmpPath)

		return persistence.NewWorkflowError("save", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow removes a workflow record. Deleting a missing record is an
// error so callers can distinguish a no-op from a real delete.
func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	lock := fp.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(fp.workflowPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("delete", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func schemaFailures(result *gojsonschema.Result) string {
	failures := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		failures = append(failures, desc.String())
	}

	return strings.Join(failures, "; ")
}
