package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/cmd"
	"github.com/daryako/cascade/pkg/condition"
	"github.com/daryako/cascade/pkg/config"
	"github.com/daryako/cascade/pkg/eventbus"
	"github.com/daryako/cascade/pkg/events"
	"github.com/daryako/cascade/pkg/otelhelper"
	"github.com/daryako/cascade/pkg/persistence"
	"github.com/daryako/cascade/pkg/sources/schedule"
	"github.com/daryako/cascade/pkg/workflow"
)

type EngineConfig struct {
	WorkerID   string
	VaultPath  string
	AuditPath  string
	ConfigFile string
}

// Engine subscribes to the event bus and routes every received event through
// the orchestrator. Each event is processed in its own goroutine; the
// orchestrator serializes the pieces that need serializing.
type Engine struct {
	config       EngineConfig
	schedules    []config.Schedule
	orchestrator *workflow.Orchestrator
	eventBus     eventbus.EventBus
	scheduler    *schedule.Source
	logger       *slog.Logger
}

func NewEngine(
	cfg EngineConfig,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) (*Engine, error) {
	var schedules []config.Schedule

	if cfg.ConfigFile != "" {
		file, err := config.LoadEngineConfig(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}

		if file.VaultPath != "" {
			cfg.VaultPath = file.VaultPath
		}

		if file.AuditPath != "" {
			cfg.AuditPath = file.AuditPath
		}

		schedules = file.Schedules
	}

	sink, err := cmd.NewAuditSink(cfg.AuditPath, "cascade-engine", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit sink: %w", err)
	}

	tracer, err := otelhelper.NewTracer(context.Background(), "cascade-engine")
	if err != nil {
		logger.Warn("Tracing disabled, failed to initialize tracer", "error", err)

		tracer = nil
	}

	artifacts := artifact.NewFileStore(cfg.VaultPath)
	registry := cmd.NewRegistry(artifacts, sink, logger)
	repository := workflow.NewRepository(store)
	orchestrator := workflow.NewOrchestrator(
		repository,
		registry,
		condition.NewEvaluator(logger),
		sink,
		logger,
		tracer,
	)

	return &Engine{
		config:       cfg,
		schedules:    schedules,
		orchestrator: orchestrator,
		eventBus:     eventBus,
		scheduler:    schedule.NewSource(eventBus, logger),
		logger:       logger,
	}, nil
}

// Run starts the subscription loop and blocks until SIGINT or SIGTERM.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.eventBus.Handle(events.EventReceivedType, e.handleEventReceived); err != nil {
		return err
	}

	if err := e.eventBus.Subscribe(ctx); err != nil {
		e.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if len(e.schedules) > 0 {
		for _, entry := range e.schedules {
			err := e.scheduler.Add(ctx, schedule.Entry{
				Name: entry.Name,
				Cron: entry.Cron,
				Data: entry.Data,
			})
			if err != nil {
				return err
			}
		}

		if err := e.scheduler.Start(ctx); err != nil {
			return err
		}

		e.logger.InfoContext(ctx, "Schedule source running", "entries", len(e.schedules))
	}

	e.logger.InfoContext(ctx, "Engine started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	e.logger.InfoContext(ctx, "Shutting down engine...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.scheduler.Stop(stopCtx); err != nil {
		e.logger.Error("Failed to stop schedule source", "error", err)
	}

	return nil
}

func (e *Engine) handleEventReceived(ctx context.Context, event any) error {
	envelope, ok := event.(*events.EventReceived)
	if !ok {
		e.logger.ErrorContext(ctx, "Invalid event type for EventReceived")

		return nil
	}

	// Process asynchronously so one slow workflow cannot back up the bus.
	go e.process(ctx, envelope)

	return nil
}

func (e *Engine) process(ctx context.Context, envelope *events.EventReceived) {
	logger := e.logger.With("event_id", envelope.Event.ID, "event_type", envelope.Event.Type)
	started := time.Now()

	executed, failures, err := e.orchestrator.ProcessEvent(ctx, envelope.Event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process event", "error", err)

		return
	}

	logger.InfoContext(ctx, "Event processed", "workflows_executed", len(executed), "workflows_failed", len(failures))

	for _, failure := range failures {
		failed := events.WorkflowFailed{
			BaseEvent: events.BaseEvent{
				ID:        e.eventBus.GenerateID(),
				Type:      events.WorkflowFailedType,
				Timestamp: time.Now().UTC(),
				WorkerID:  e.config.WorkerID,
			},
			EventID:    envelope.Event.ID,
			WorkflowID: failure.WorkflowID,
			Error:      failure.Err.Error(),
		}

		if err := e.eventBus.Publish(ctx, envelope.Event.ID, failed); err != nil {
			logger.ErrorContext(ctx, "Failed to publish workflow failure", "workflow_id", failure.WorkflowID, "error", err)
		}
	}

	result := events.WorkflowsExecuted{
		BaseEvent: events.BaseEvent{
			ID:        e.eventBus.GenerateID(),
			Type:      events.WorkflowsExecutedType,
			Timestamp: time.Now().UTC(),
			WorkerID:  e.config.WorkerID,
		},
		EventID:     envelope.Event.ID,
		WorkflowIDs: executed,
		Duration:    time.Since(started),
	}

	if err := e.eventBus.Publish(ctx, envelope.Event.ID, result); err != nil {
		logger.ErrorContext(ctx, "Failed to publish execution result", "error", err)
	}
}
