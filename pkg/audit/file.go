package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileSink writes one JSON document per audit entry into an audit directory.
// Entries are standalone files, named by timestamp and action, so the trail
// stays searchable with nothing but grep.
type FileSink struct {
	dir       string
	actor     string
	sessionID string
	logger    *slog.Logger
}

// NewFileSink creates the audit directory if needed and derives a session id
// from the actor and start time, grouping all entries of one process run.
func NewFileSink(dir, actor string, logger *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory %s: %w", dir, err)
	}

	sum := sha256.Sum256([]byte(actor + "_" + time.Now().Format(time.RFC3339Nano)))

	return &FileSink{
		dir:       dir,
		actor:     actor,
		sessionID: hex.EncodeToString(sum[:])[:16],
		logger:    logger.With("module", "audit"),
	}, nil
}

// Log fills entry defaults, writes the record, and returns its path.
func (s *FileSink) Log(_ context.Context, entry Entry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if entry.Actor == "" {
		entry.Actor = s.actor
	}

	if entry.SessionID == "" {
		entry.SessionID = s.sessionID
	}

	if entry.ApprovalStatus == "" {
		entry.ApprovalStatus = ApprovalNotRequired
	}

	if entry.SecurityLevel == "" {
		entry.SecurityLevel = LevelInternal
	}

	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	payload, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json",
		entry.Timestamp.Format("2006-01-02_15-04-05"),
		entry.Action,
		uuid.New().String()[:8],
	)

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit entry %s: %w", path, err)
	}

	s.logger.Debug("Recorded audit entry",
		"action", entry.Action, "target", entry.Target, "status", entry.Status)

	return path, nil
}

// Cleanup removes entries older than the retention window. Returns how many
// files were deleted.
func (s *FileSink) Cleanup(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted := 0

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, err
	}

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("Failed to remove expired audit entry", "path", path, "error", err)

				continue
			}

			deleted++
		}
	}

	return deleted, nil
}
