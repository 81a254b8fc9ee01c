package registry

import (
	"context"
	"testing"

	"github.com/daryako/cascade/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	actionType models.ActionType
	result     any
}

func (h *stubHandler) Type() models.ActionType { return h.actionType }

func (h *stubHandler) Execute(_ context.Context, _ map[string]any, _ *models.RunContext) (any, error) {
	return h.result, nil
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubHandler{actionType: models.ActionWait, result: "ok"})

	handler, err := reg.Handler(models.ActionWait)
	require.NoError(t, err)

	result, err := handler.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Handler(models.ActionSendEmail)
	require.ErrorIs(t, err, ErrNoHandler)
	assert.Contains(t, err.Error(), "send_email")
}

func TestRegistryReplacesHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubHandler{actionType: models.ActionWait, result: "first"})
	reg.Register(&stubHandler{actionType: models.ActionWait, result: "second"})

	handler, err := reg.Handler(models.ActionWait)
	require.NoError(t, err)

	result, _ := handler.Execute(context.Background(), nil, nil)
	assert.Equal(t, "second", result)
	assert.Len(t, reg.Types(), 1)
}
