package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreCreate(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root)

	path, err := store.Create(filepath.Join(PendingApprovalDir, "EMAIL_draft.md"), []byte("# Draft"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, root))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Draft", string(content))
}

func TestFileStoreWriteOnce(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Create("Inbox/note.md", []byte("first"))
	require.NoError(t, err)

	_, err = store.Create("Inbox/note.md", []byte("second"))
	require.ErrorIs(t, err, ErrExists)
}

func TestFileStoreRejectsEscapingPaths(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Create("../outside.md", []byte("nope"))
	assert.Error(t, err)
}

func TestDraftName(t *testing.T) {
	first := DraftName("EMAIL")
	second := DraftName("EMAIL")

	assert.True(t, strings.HasPrefix(first, "EMAIL_"))
	assert.True(t, strings.HasSuffix(first, ".md"))
	assert.NotEqual(t, first, second)
}
