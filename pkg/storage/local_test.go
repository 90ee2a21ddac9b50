package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchive_Store(t *testing.T) {
	base := t.TempDir()
	archive, err := NewLocalArchive(filepath.Join(base, "archive"))
	require.NoError(t, err)

	src := filepath.Join(base, "statement march.pdf")
	require.NoError(t, os.WriteFile(src, []byte("statement body"), 0o600))

	info, err := archive.Store(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "statement_march.pdf", info.Name)
	assert.Equal(t, int64(len("statement body")), info.Size)
	assert.FileExists(t, info.Path)
	assert.NoFileExists(t, src, "source must be moved, not copied")

	body, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	assert.Equal(t, "statement body", string(body))
}

func TestLocalArchive_Store_MissingSource(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Store(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestLocalArchive_Store_NameCollision(t *testing.T) {
	base := t.TempDir()
	archive, err := NewLocalArchive(filepath.Join(base, "archive"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		src := filepath.Join(base, "statement.pdf")
		require.NoError(t, os.WriteFile(src, []byte("body"), 0o600))
		_, err := archive.Store(context.Background(), src)
		require.NoError(t, err)
	}

	files, err := archive.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLocalArchive_List_Empty(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	files, err := archive.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}
