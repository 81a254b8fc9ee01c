package invoice

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteStagesInvoiceDraft(t *testing.T) {
	recorder := audit.NewRecorder()
	action := New(
		artifact.NewFileStore(t.TempDir()),
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	run := models.NewRunContext(
		models.NewEvent(models.EventInvoiceCreated, "odoo_watcher", nil),
		&models.Workflow{ID: "wf-2", Name: "Invoice staging"},
	)

	result, err := action.Execute(context.Background(), map[string]any{
		"customer_id": "7",
		"items": []any{
			map[string]any{"name": "Consulting", "quantity": 10, "price": 150},
			map[string]any{"name": "Support", "quantity": 1, "price": 500},
		},
	}, run)
	require.NoError(t, err)

	resultMap := result.(map[string]any)
	assert.Equal(t, "pending_approval", resultMap["status"])

	content, err := os.ReadFile(resultMap["file"].(string))
	require.NoError(t, err)
	assert.Contains(t, string(content), "**Customer ID**: 7")
	assert.Contains(t, string(content), "- Consulting: 10 x $150")
	assert.Contains(t, string(content), "- Support: 1 x $500")

	entries := recorder.ByAction("accounting_invoice_draft_created")
	require.Len(t, entries, 1)
	assert.Equal(t, "accounting:customer_7", entries[0].Target)
	assert.Equal(t, 2, entries[0].Details["items_count"])
}
