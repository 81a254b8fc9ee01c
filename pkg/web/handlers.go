// Package web provides HTTP handlers and REST API endpoints for workflow
// management and event injection.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/daryako/cascade/pkg/eventbus"
	"github.com/daryako/cascade/pkg/events"
	"github.com/daryako/cascade/pkg/models"
	"github.com/daryako/cascade/pkg/workflow"
)

type APIHandlers struct {
	repository *workflow.Repository
	eventBus   eventbus.EventBus
	validator  *validator.Validate
	logger     *slog.Logger
}

func NewAPIHandlers(
	repository *workflow.Repository,
	eventBus eventbus.EventBus,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		repository: repository,
		eventBus:   eventBus,
		validator:  validate,
		logger:     logger.With("module", "web"),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.repository.FetchAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.repository.Create(c.Context(), req.ToWorkflow())
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.repository.Update(c.Context(), id, req.ToWorkflow())
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) EnableWorkflow(c fiber.Ctx) error {
	return h.setEnabled(c, true)
}

func (h *APIHandlers) DisableWorkflow(c fiber.Ctx) error {
	return h.setEnabled(c, false)
}

func (h *APIHandlers) setEnabled(c fiber.Ctx, enabled bool) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.repository.SetEnabled(c.Context(), id, enabled)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.repository.Delete(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PublishEvent accepts a domain event and hands it to the bus. The response
// acknowledges acceptance, not execution: workflows run asynchronously.
func (h *APIHandlers) PublishEvent(c fiber.Ctx) error {
	var req PublishEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !req.EventType.Valid() {
		return badRequest(c, "Unknown event type: "+string(req.EventType))
	}

	event := models.NewEvent(req.EventType, req.Source, req.Data)
	envelope := events.EventReceived{
		BaseEvent: events.BaseEvent{
			ID:        h.eventBus.GenerateID(),
			Type:      events.EventReceivedType,
			Timestamp: time.Now().UTC(),
		},
		Event: event,
	}

	if err := h.eventBus.Publish(c.Context(), event.ID, envelope); err != nil {
		h.logger.Error("Failed to publish event", "event_id", event.ID, "error", err)

		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(PublishEventResponse{
		EventID: event.ID,
		Status:  "accepted",
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.repository.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Cascade API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Cascade API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
