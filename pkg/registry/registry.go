// Package registry maps action types to their registered handlers.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/daryako/cascade/pkg/models"
)

// ErrNoHandler indicates an action type with no registered handler. This is a
// configuration bug: the action fails immediately and is not retried.
var ErrNoHandler = errors.New("no handler registered for action type")

// ErrPolicyViolation indicates a handler refused the request on security
// grounds (for example a script outside the allow-list). Policy violations
// are fatal to the action immediately, never retried.
var ErrPolicyViolation = errors.New("policy violation")

// Handler executes one action kind. Implementations receive the resolved
// parameters and a read view of the run context; they may stage artifacts and
// write audit entries, but must not mutate the workflow or the event.
type Handler interface {
	Type() models.ActionType
	Execute(ctx context.Context, params map[string]any, run *models.RunContext) (any, error)
}

// Registry is the dispatch table from action type to handler.
type Registry struct {
	handlers map[models.ActionType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.ActionType]Handler)}
}

// Register adds a handler, replacing any previous handler for the same type.
func (r *Registry) Register(handler Handler) {
	r.handlers[handler.Type()] = handler
}

// Handler returns the handler for actionType, or ErrNoHandler.
func (r *Registry) Handler(actionType models.ActionType) (Handler, error) {
	handler, ok := r.handlers[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, actionType)
	}

	return handler, nil
}

// Types returns the registered action types.
func (r *Registry) Types() []models.ActionType {
	types := make([]models.ActionType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}

	return types
}
