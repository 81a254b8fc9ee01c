package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cascade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoadEngineConfig(t *testing.T) {
	path := writeConfig(t, `
vault_path: /srv/vault
audit_path: /srv/vault/Logs/audit
schedules:
  - name: daily-report
    cron: "0 8 * * *"
    data:
      report: daily
  - name: weekly-summary
    cron: "@weekly"
`)

	file, err := LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/vault", file.VaultPath)
	assert.Equal(t, "/srv/vault/Logs/audit", file.AuditPath)
	require.Len(t, file.Schedules, 2)
	assert.Equal(t, "daily-report", file.Schedules[0].Name)
	assert.Equal(t, "daily", file.Schedules[0].Data["report"])
}

func TestLoadEngineConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "schedules: [unclosed",
			wantErr: "failed to parse YAML",
		},
		{
			name: "schedule missing name",
			content: `
schedules:
  - cron: "@daily"
`,
			wantErr: "name is required",
		},
		{
			name: "schedule missing cron",
			content: `
schedules:
  - name: no-cron
`,
			wantErr: "cron is required",
		},
		{
			name: "duplicate schedule name",
			content: `
schedules:
  - name: dup
    cron: "@daily"
  - name: dup
    cron: "@hourly"
`,
			wantErr: "duplicate name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEngineConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadEngineConfigMissingFile(t *testing.T) {
	_, err := LoadEngineConfig("/nonexistent/cascade.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
