// Package schedule emits scheduled_trigger events on cron schedules.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/daryako/cascade/pkg/eventbus"
	"github.com/daryako/cascade/pkg/events"
	"github.com/daryako/cascade/pkg/models"
)

// Entry is one recurring trigger: a cron expression plus the data carried by
// every event it emits.
type Entry struct {
	Name string         `json:"name"`
	Cron string         `json:"cron"`
	Data map[string]any `json:"data,omitempty"`
}

// Source runs a cron scheduler and publishes a scheduled_trigger domain
// event for every firing entry.
type Source struct {
	publisher eventbus.EventBus
	logger    *slog.Logger
	cron      *cron.Cron

	mu      sync.Mutex
	started bool
}

func NewSource(publisher eventbus.EventBus, logger *slog.Logger) *Source {
	return &Source{
		publisher: publisher,
		logger:    logger.With("module", "source.schedule"),
		cron:      cron.New(),
	}
}

// Add registers an entry. Returns an error for invalid cron expressions.
func (s *Source) Add(ctx context.Context, entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("schedule entry needs a name")
	}

	_, err := s.cron.AddFunc(entry.Cron, func() {
		s.fire(ctx, entry)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for entry %s: %w", entry.Cron, entry.Name, err)
	}

	return nil
}

// Start begins emitting events. It is idempotent.
func (s *Source) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("Schedule source started", "entries", len(s.cron.Entries()))

	return nil
}

// Stop halts the scheduler and waits for in-flight firings to finish.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.started = false
	s.logger.Info("Schedule source stopped")

	return nil
}

func (s *Source) fire(ctx context.Context, entry Entry) {
	data := map[string]any{"schedule": entry.Name}
	for k, v := range entry.Data {
		data[k] = v
	}

	event := models.NewEvent(models.EventScheduledTrigger, "scheduler", data)
	envelope := events.EventReceived{
		BaseEvent: events.BaseEvent{
			ID:        s.publisher.GenerateID(),
			Type:      events.EventReceivedType,
			Timestamp: time.Now().UTC(),
		},
		Event: event,
	}

	if err := s.publisher.Publish(ctx, event.ID, envelope); err != nil {
		s.logger.Error("Failed to publish scheduled trigger",
			"schedule", entry.Name, "error", err)

		return
	}

	s.logger.Info("Scheduled trigger fired", "schedule", entry.Name, "event_id", event.ID)
}
