package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/condition"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/otelhelper"
	"github.com/daryako/cascade/pkg/registry"
	"github.com/daryako/cascade/pkg/template"
)

// Orchestrator routes events to the workflows they trigger and runs each
// matched workflow's actions in order. All collaborators are injected; the
// orchestrator holds no global state beyond per-workflow bookkeeping locks.
type Orchestrator struct {
	repository *Repository
	registry   *registry.Registry
	conditions *condition.Evaluator
	audit      audit.Sink
	logger     *slog.Logger
	tracer     trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrchestrator wires an orchestrator. A nil tracer disables tracing.
func NewOrchestrator(
	repository *Repository,
	reg *registry.Registry,
	conditions *condition.Evaluator,
	auditSink audit.Sink,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Orchestrator {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("cascade")
	}

	return &Orchestrator{
		repository: repository,
		registry:   reg,
		conditions: conditions,
		audit:      auditSink,
		logger:     logger.With("module", "orchestrator"),
		tracer:     tracer,
	}
}

// RunFailure reports one workflow run that aborted while an event was being
// processed.
type RunFailure struct {
	WorkflowID string
	Err        error
}

// ProcessEvent runs every enabled workflow whose trigger matches the event.
// It returns the ids of the workflows that were run (attempted), in the order
// they were matched, plus a failure record for each run that aborted. A
// failing workflow does not prevent later matches from running.
func (o *Orchestrator) ProcessEvent(ctx context.Context, event models.Event) ([]string, []RunFailure, error) {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "orchestrator.process_event",
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.EventTypeKey, string(event.Type)),
		attribute.String(otelhelper.EventSourceKey, event.Source),
	)
	defer span.End()

	logger := o.logger.With("event_id", event.ID, "event_type", event.Type)

	if !event.Type.Valid() {
		logger.Warn("Ignoring event with unknown type")

		return nil, nil, nil
	}

	workflows, err := o.repository.FetchAll(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, nil, err
	}

	executed := make([]string, 0)

	var failures []RunFailure

	for _, wf := range workflows {
		if !wf.Enabled || wf.TriggerEvent != event.Type {
			continue
		}

		if wf.TriggerCondition != "" {
			gate := map[string]any{"event": event.AsMap()}
			if !o.conditions.Evaluate(wf.TriggerCondition, gate) {
				logger.Debug("Trigger condition not met", "workflow_id", wf.ID)

				continue
			}
		}

		logger.Info("Executing workflow", "workflow_id", wf.ID, "workflow_name", wf.Name)

		if err := o.executeWorkflow(ctx, wf, event); err != nil {
			logger.Error("Workflow execution failed", "workflow_id", wf.ID, "error", err)
			failures = append(failures, RunFailure{WorkflowID: wf.ID, Err: err})
		}

		executed = append(executed, wf.ID)
	}

	span.SetAttributes(attribute.Int(otelhelper.WorkflowsExecutedKey, len(executed)))

	return executed, failures, nil
}

// executeWorkflow runs the actions of one matched workflow. Bookkeeping and
// the audit entry happen whether the run succeeds or aborts.
func (o *Orchestrator) executeWorkflow(ctx context.Context, wf *models.Workflow, event models.Event) error {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "orchestrator.execute_workflow",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.Int(otelhelper.WorkflowActionsKey, len(wf.Actions)),
	)
	defer span.End()

	started := time.Now()
	run := models.NewRunContext(event, wf)

	runErr := o.runActions(ctx, wf, run)

	o.recordExecution(ctx, wf.ID)

	entry := audit.Entry{
		Action: "workflow_execution",
		Target: "workflow:" + wf.ID,
		Status: audit.StatusSuccess,
		Details: map[string]any{
			"workflow_name": wf.Name,
			"event_type":    string(event.Type),
			"event_id":      event.ID,
			"action_count":  len(wf.Actions),
		},
		DurationMS: time.Since(started).Milliseconds(),
	}

	if runErr != nil {
		entry.Status = audit.StatusFailure
		entry.Error = runErr.Error()

		var actionErr *ActionError
		if errors.As(runErr, &actionErr) {
			otelhelper.SetError(span, runErr,
				attribute.String(otelhelper.ActionTypeKey, string(actionErr.Type)),
				attribute.Int(otelhelper.ActionIndexKey, actionErr.Index),
			)
		} else {
			otelhelper.SetError(span, runErr)
		}
	}

	if _, err := o.audit.Log(ctx, entry); err != nil {
		o.logger.Error("Failed to write audit entry", "workflow_id", wf.ID, "error", err)
	}

	return runErr
}

func (o *Orchestrator) runActions(ctx context.Context, wf *models.Workflow, run *models.RunContext) error {
	for i, action := range wf.Actions {
		logger := o.logger.With("workflow_id", wf.ID, "action_index", i, "action_type", action.Type)

		if action.Condition != "" && !o.conditions.Evaluate(action.Condition, run.AsMap()) {
			logger.Debug("Action condition not met, skipping")

			continue
		}

		result, err := o.dispatch(ctx, wf, i, action, run)
		if err != nil {
			return err
		}

		run.SetResult(i, result)
	}

	return nil
}

// dispatch runs one action with its retry budget. Each attempt is bounded by
// the action's timeout; a deadline expiry counts as a retryable failure. The
// timeout is cooperative: handlers must honor context cancellation for it to
// take effect. Policy violations and missing handlers are fatal immediately.
func (o *Orchestrator) dispatch(
	ctx context.Context,
	wf *models.Workflow,
	index int,
	action *models.WorkflowAction,
	run *models.RunContext,
) (any, error) {
	logger := o.logger.With("workflow_id", wf.ID, "action_index", index, "action_type", action.Type)

	handler, err := o.registry.Handler(action.Type)
	if err != nil {
		return nil, &ActionError{WorkflowID: wf.ID, Index: index, Type: action.Type, Attempts: 0, Err: err}
	}

	params := template.Resolve(action.Parameters, run.AsMap())

	attempts := action.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := o.attempt(ctx, handler, action, params, run)
		if err == nil {
			if attempt > 1 {
				logger.Info("Action succeeded after retry", "attempt", attempt)
			}

			return result, nil
		}

		lastErr = err

		if errors.Is(err, registry.ErrPolicyViolation) {
			logger.Error("Action refused by policy", "error", err)

			return nil, &ActionError{WorkflowID: wf.ID, Index: index, Type: action.Type, Attempts: attempt, Err: err}
		}

		logger.Warn("Action attempt failed", "attempt", attempt, "of", attempts, "error", err)
	}

	return nil, &ActionError{WorkflowID: wf.ID, Index: index, Type: action.Type, Attempts: attempts, Err: lastErr}
}

func (o *Orchestrator) attempt(
	ctx context.Context,
	handler registry.Handler,
	action *models.WorkflowAction,
	params map[string]any,
	run *models.RunContext,
) (any, error) {
	timeout := time.Duration(action.Timeout) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(models.DefaultTimeoutSeconds) * time.Second
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return handler.Execute(attemptCtx, params, run)
}

// recordExecution bumps the provenance counters on the stored record. The
// fetch-increment-save cycle is serialized per workflow id so concurrent
// triggers never lose a count. Persistence failure is logged and otherwise
// ignored: bookkeeping is best-effort and never fails a run.
func (o *Orchestrator) recordExecution(ctx context.Context, workflowID string) {
	lock := o.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := o.repository.FetchByID(ctx, workflowID)
	if err != nil {
		o.logger.Error("Failed to load workflow for bookkeeping", "workflow_id", workflowID, "error", err)

		return
	}

	latest.MarkExecuted(time.Now())

	if err := o.repository.Save(ctx, latest); err != nil {
		o.logger.Error("Failed to persist execution bookkeeping", "workflow_id", workflowID, "error", err)
	}
}

func (o *Orchestrator) lockFor(workflowID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.locks == nil {
		o.locks = make(map[string]*sync.Mutex)
	}

	lock, ok := o.locks[workflowID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[workflowID] = lock
	}

	return lock
}
