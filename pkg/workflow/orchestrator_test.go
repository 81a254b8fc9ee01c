package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/condition"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/otelhelper"
	"github.com/daryako/cascade/pkg/persistence"
	"github.com/daryako/cascade/pkg/registry"
)

// memPersistence is an in-memory persistence.Persistence for tests.
type memPersistence struct {
	mu        sync.Mutex
	workflows map[string]*models.Workflow
}

func newMemPersistence(workflows ...*models.Workflow) *memPersistence {
	m := &memPersistence{workflows: make(map[string]*models.Workflow)}
	for _, wf := range workflows {
		wf.Normalize()
		m.workflows[wf.ID] = wf
	}

	return m
}

func (m *memPersistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Workflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		clone := *wf
		out = append(out, &clone)
	}

	return out, nil
}

func (m *memPersistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wf, ok := m.workflows[id]
	if !ok {
		return nil, persistence.NewWorkflowError("fetch", id, persistence.ErrWorkflowNotFound)
	}

	clone := *wf

	return &clone, nil
}

func (m *memPersistence) SaveWorkflow(_ context.Context, wf *models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *wf
	m.workflows[wf.ID] = &clone

	return nil
}

func (m *memPersistence) DeleteWorkflow(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workflows[id]; !ok {
		return persistence.NewWorkflowError("delete", id, persistence.ErrWorkflowNotFound)
	}

	delete(m.workflows, id)

	return nil
}

func (m *memPersistence) HealthCheck(_ context.Context) error { return nil }
func (m *memPersistence) Close(_ context.Context) error       { return nil }

// stubHandler counts invocations and returns canned results or errors.
type stubHandler struct {
	actionType models.ActionType
	mu         sync.Mutex
	calls      int
	result     any
	err        error
	execute    func(ctx context.Context, params map[string]any, run *models.RunContext) (any, error)
}

func (s *stubHandler) Type() models.ActionType { return s.actionType }

func (s *stubHandler) Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.execute != nil {
		return s.execute(ctx, params, run)
	}

	return s.result, s.err
}

func (s *stubHandler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func newTestOrchestrator(t *testing.T, store persistence.Persistence, handlers ...registry.Handler) (*Orchestrator, *audit.Recorder) {
	t.Helper()

	reg := registry.NewRegistry()
	for _, h := range handlers {
		reg.Register(h)
	}

	recorder := audit.NewRecorder()
	logger := slog.Default()
	orch := NewOrchestrator(NewRepository(store), reg, condition.NewEvaluator(logger), recorder, logger, nil)

	return orch, recorder
}

func notificationWorkflow(id string, enabled bool, triggerCondition string) *models.Workflow {
	return &models.Workflow{
		ID:               id,
		Name:             "High-value invoice alert",
		TriggerEvent:     models.EventInvoiceCreated,
		TriggerCondition: triggerCondition,
		Enabled:          enabled,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionSendNotification, Parameters: map[string]any{
				"message": "{{event.data.customer_name}}",
			}},
		},
	}
}

func TestProcessEventMatchesOnTypeAndEnabled(t *testing.T) {
	store := newMemPersistence(
		notificationWorkflow("wf-match", true, ""),
		notificationWorkflow("wf-disabled", false, ""),
		&models.Workflow{
			ID:           "wf-other-type",
			Name:         "Email triage",
			TriggerEvent: models.EventEmailReceived,
			Enabled:      true,
		},
	)
	handler := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	orch, _ := newTestOrchestrator(t, store, handler)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", map[string]any{"amount": 50.0})

	executed, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-match"}, executed)
	assert.Equal(t, 1, handler.callCount())
}

func TestProcessEventGatesOnTriggerCondition(t *testing.T) {
	store := newMemPersistence(
		notificationWorkflow("wf-gated", true, "event.data.amount > 1000"),
	)
	handler := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	orch, _ := newTestOrchestrator(t, store, handler)

	smallInvoice := models.NewEvent(models.EventInvoiceCreated, "accounting", map[string]any{"amount": 500.0})
	executed, _, err := orch.ProcessEvent(context.Background(), smallInvoice)
	require.NoError(t, err)
	assert.Empty(t, executed)
	assert.Equal(t, 0, handler.callCount())

	bigInvoice := models.NewEvent(models.EventInvoiceCreated, "accounting", map[string]any{"amount": 2500.0})
	executed, _, err = orch.ProcessEvent(context.Background(), bigInvoice)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-gated"}, executed)
	assert.Equal(t, 1, handler.callCount())
}

func TestProcessEventIgnoresUnknownEventType(t *testing.T) {
	store := newMemPersistence(notificationWorkflow("wf-1", true, ""))
	orch, _ := newTestOrchestrator(t, store)

	executed, _, err := orch.ProcessEvent(context.Background(), models.Event{ID: "x", Type: "made_up"})
	require.NoError(t, err)
	assert.Empty(t, executed)
}

func TestDispatchRetriesExactlyRetryCountTimes(t *testing.T) {
	handler := &stubHandler{actionType: models.ActionRunScript, err: errors.New("transient failure")}
	store := newMemPersistence(&models.Workflow{
		ID:           "wf-retry",
		Name:         "Nightly maintenance",
		TriggerEvent: models.EventScheduledTrigger,
		Enabled:      true,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionRunScript, RetryCount: 4},
		},
	})
	orch, recorder := newTestOrchestrator(t, store, handler)

	event := models.NewEvent(models.EventScheduledTrigger, "scheduler", nil)

	executed, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-retry"}, executed)
	assert.Equal(t, 4, handler.callCount())

	entries := recorder.ByAction("workflow_execution")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusFailure, entries[0].Status)
	assert.Contains(t, entries[0].Error, "after 4 attempt(s)")
}

func TestRetrySucceedsMidBudget(t *testing.T) {
	var calls int
	handler := &stubHandler{
		actionType: models.ActionSendNotification,
		execute: func(_ context.Context, _ map[string]any, _ *models.RunContext) (any, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("flaky")
			}

			return map[string]any{"status": "sent"}, nil
		},
	}
	store := newMemPersistence(notificationWorkflow("wf-flaky", true, ""))
	orch, recorder := newTestOrchestrator(t, store, handler)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)

	_, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	entries := recorder.ByAction("workflow_execution")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusSuccess, entries[0].Status)
}

func TestPolicyViolationAbortsWithoutRetry(t *testing.T) {
	handler := &stubHandler{
		actionType: models.ActionRunScript,
		err:        fmt.Errorf("%w: script not allowed", registry.ErrPolicyViolation),
	}
	after := &stubHandler{actionType: models.ActionSendNotification, result: "never"}
	store := newMemPersistence(&models.Workflow{
		ID:           "wf-policy",
		Name:         "Script runner",
		TriggerEvent: models.EventManualTrigger,
		Enabled:      true,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionRunScript, RetryCount: 5},
			{Type: models.ActionSendNotification},
		},
	})
	orch, _ := newTestOrchestrator(t, store, handler, after)

	event := models.NewEvent(models.EventManualTrigger, "cli", nil)

	_, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, handler.callCount(), "policy violations must not be retried")
	assert.Equal(t, 0, after.callCount(), "actions after a hard failure must not run")
}

func TestMissingHandlerAbortsImmediately(t *testing.T) {
	store := newMemPersistence(notificationWorkflow("wf-nohandler", true, ""))
	orch, recorder := newTestOrchestrator(t, store)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)

	executed, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-nohandler"}, executed)

	entries := recorder.ByAction("workflow_execution")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusFailure, entries[0].Status)
}

func TestActionConditionSkipsWithoutFailing(t *testing.T) {
	first := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	skipped := &stubHandler{actionType: models.ActionSendEmail, result: "never"}
	store := newMemPersistence(&models.Workflow{
		ID:           "wf-skip",
		Name:         "Conditional follow-up",
		TriggerEvent: models.EventInvoiceCreated,
		Enabled:      true,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionSendNotification},
			{Type: models.ActionSendEmail, Condition: "event.data.amount > 1000"},
		},
	})
	orch, recorder := newTestOrchestrator(t, store, first, skipped)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", map[string]any{"amount": 10.0})

	_, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, first.callCount())
	assert.Equal(t, 0, skipped.callCount())

	entries := recorder.ByAction("workflow_execution")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusSuccess, entries[0].Status, "a skipped action is not a failure")
}

func TestResultsFlowIntoLaterActions(t *testing.T) {
	first := &stubHandler{
		actionType: models.ActionCreateFile,
		result:     map[string]any{"status": "created", "path": "Inbox/report.md"},
	}

	var seenMessage any

	second := &stubHandler{
		actionType: models.ActionSendNotification,
		execute: func(_ context.Context, params map[string]any, _ *models.RunContext) (any, error) {
			seenMessage = params["message"]

			return map[string]any{"status": "sent"}, nil
		},
	}
	store := newMemPersistence(&models.Workflow{
		ID:           "wf-chain",
		Name:         "Report then notify",
		TriggerEvent: models.EventFileAdded,
		Enabled:      true,
		Actions: []*models.WorkflowAction{
			{Type: models.ActionCreateFile},
			{
				Type:       models.ActionSendNotification,
				Condition:  "results.action_0.status == 'created'",
				Parameters: map[string]any{"message": "{{results.action_0.path}}"},
			},
		},
	})
	orch, _ := newTestOrchestrator(t, store, first, second)

	event := models.NewEvent(models.EventFileAdded, "vault", nil)

	_, _, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, second.callCount())
	assert.Equal(t, "Inbox/report.md", seenMessage)
}

func TestExecutionBookkeepingBumpsOnSuccessAndFailure(t *testing.T) {
	okHandler := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	store := newMemPersistence(notificationWorkflow("wf-count", true, ""))
	orch, _ := newTestOrchestrator(t, store, okHandler)

	ctx := context.Background()
	event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)

	_, _, err := orch.ProcessEvent(ctx, event)
	require.NoError(t, err)

	wf, err := store.WorkflowByID(ctx, "wf-count")
	require.NoError(t, err)
	assert.Equal(t, 1, wf.ExecutionCount)
	require.NotNil(t, wf.LastExecuted)

	// Failure still counts as an attempt.
	okHandler.err = errors.New("boom")
	okHandler.result = nil

	_, _, err = orch.ProcessEvent(ctx, event)
	require.NoError(t, err)

	wf, err = store.WorkflowByID(ctx, "wf-count")
	require.NoError(t, err)
	assert.Equal(t, 2, wf.ExecutionCount)
}

func TestProcessEventReportsFailures(t *testing.T) {
	okHandler := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	badHandler := &stubHandler{actionType: models.ActionRunScript, err: errors.New("script exploded")}
	store := newMemPersistence(
		notificationWorkflow("wf-ok", true, ""),
		&models.Workflow{
			ID:           "wf-bad",
			Name:         "Invoice archiver",
			TriggerEvent: models.EventInvoiceCreated,
			Enabled:      true,
			Actions: []*models.WorkflowAction{
				{Type: models.ActionRunScript},
			},
		},
	)
	orch, _ := newTestOrchestrator(t, store, okHandler, badHandler)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)

	executed, failures, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wf-ok", "wf-bad"}, executed, "a failed run still counts as attempted")

	require.Len(t, failures, 1)
	assert.Equal(t, "wf-bad", failures[0].WorkflowID)

	var actionErr *ActionError

	require.ErrorAs(t, failures[0].Err, &actionErr)
	assert.Equal(t, models.ActionRunScript, actionErr.Type)
}

func TestProcessEventSpansCarryAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	handler := &stubHandler{actionType: models.ActionSendNotification, err: errors.New("gateway down")}
	store := newMemPersistence(notificationWorkflow("wf-traced", true, ""))

	reg := registry.NewRegistry()
	reg.Register(handler)

	logger := slog.Default()
	orch := NewOrchestrator(
		NewRepository(store),
		reg,
		condition.NewEvaluator(logger),
		audit.NewRecorder(),
		logger,
		provider.Tracer("cascade-test"),
	)

	event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)

	_, failures, err := orch.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, failures, 1)

	spans := exporter.GetSpans()

	byName := make(map[string]tracetest.SpanStub, len(spans))
	for _, span := range spans {
		byName[span.Name] = span
	}

	processSpan, ok := byName["orchestrator.process_event"]
	require.True(t, ok)
	assert.Contains(t, processSpan.Attributes, attribute.String(otelhelper.EventTypeKey, string(models.EventInvoiceCreated)))
	assert.Contains(t, processSpan.Attributes, attribute.Int(otelhelper.WorkflowsExecutedKey, 1))

	wfSpan, ok := byName["orchestrator.execute_workflow"]
	require.True(t, ok)
	assert.Contains(t, wfSpan.Attributes, attribute.String(otelhelper.WorkflowIDKey, "wf-traced"))
	assert.Equal(t, codes.Error, wfSpan.Status.Code)

	var errorEvent sdktrace.Event

	for _, evt := range wfSpan.Events {
		if evt.Name == "error_occurred" {
			errorEvent = evt
		}
	}

	assert.Contains(t, errorEvent.Attributes, attribute.String(otelhelper.ActionTypeKey, string(models.ActionSendNotification)))
	assert.Contains(t, errorEvent.Attributes, attribute.Int(otelhelper.ActionIndexKey, 0))
}

func TestConcurrentEventsDoNotLoseCounts(t *testing.T) {
	handler := &stubHandler{actionType: models.ActionSendNotification, result: map[string]any{"status": "sent"}}
	store := newMemPersistence(notificationWorkflow("wf-parallel", true, ""))
	orch, _ := newTestOrchestrator(t, store, handler)

	ctx := context.Background()

	const runs = 20

	var wg sync.WaitGroup
	for range runs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			event := models.NewEvent(models.EventInvoiceCreated, "accounting", nil)
			_, _, _ = orch.ProcessEvent(ctx, event)
		}()
	}

	wg.Wait()

	wf, err := store.WorkflowByID(ctx, "wf-parallel")
	require.NoError(t, err)
	assert.Equal(t, runs, wf.ExecutionCount)
}
