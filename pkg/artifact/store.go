// Package artifact stages human-reviewable draft files.
//
// Every external-facing action handler writes its output here instead of
// performing the external side effect: an email draft, a calendar event, an
// invoice. A human reviews the staged file and approves or rejects it
// out-of-band. The store is write-once per path so a retried action can never
// silently clobber a draft that is already under review.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conventional directories inside the vault root.
const (
	PendingApprovalDir = "Pending_Approval"
	InboxDir           = "Inbox"
)

// ErrExists is returned when a draft already occupies the target path.
var ErrExists = fmt.Errorf("artifact already exists")

// Store is the write-once draft mechanism the action handlers depend on:
// create a file at a relative path with the given content, or fail.
type Store interface {
	Create(path string, content []byte) (string, error)
}

// FileStore stages artifacts under a vault root directory on the local
// filesystem.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Create writes content at path relative to the vault root and returns the
// absolute path. Parent directories are created as needed. An existing file
// at the target path is an error (ErrExists), never an overwrite.
func (s *FileStore) Create(path string, content []byte) (string, error) {
	full := filepath.Join(s.root, filepath.Clean(path))

	// Reject paths that escape the vault root.
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q escapes the vault root", path)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("%w: %s", ErrExists, full)
		}

		return "", fmt.Errorf("failed to create artifact %s: %w", full, err)
	}

	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", full, err)
	}

	return full, nil
}

// DraftName builds a timestamped draft filename such as
// EMAIL_2026-02-09_143015_a1b2c3.md. The random suffix keeps two drafts
// staged within the same second from colliding.
func DraftName(prefix string) string {
	return fmt.Sprintf("%s_%s_%s.md",
		prefix,
		time.Now().Format("2006-01-02_150405"),
		uuid.New().String()[:6],
	)
}
