package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sdejongh/treesync/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, local)
		defer local.Close()
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		var invalid *models.InvalidDirectoryError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := NewLocal(file)
		var invalid *models.InvalidDirectoryError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("SymlinkedRootIsResolved", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks require privileges on windows")
		}
		target := t.TempDir()
		link := filepath.Join(t.TempDir(), "link")
		require.NoError(t, os.Symlink(target, link))

		local, err := NewLocal(link)
		require.NoError(t, err)
		resolved, _ := filepath.EvalSymlinks(target)
		assert.Equal(t, resolved, local.Root())
	})

	t.Run("MemoryFs", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll("/tree", 0o755))

		local, err := NewLocalFs(fsys, "/tree/")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/tree"), local.Root())
		assert.Same(t, fsys, local.Fs())
	})
}

func newMemTree(t *testing.T, files map[string]string) *Local {
	t.Helper()
	fsys := afero.NewMemMapFs()
	root := filepath.FromSlash("/tree")
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, afero.WriteFile(fsys, full, []byte(content), 0o644))
	}
	local, err := NewLocalFs(fsys, root)
	require.NoError(t, err)
	return local
}

func TestLocalReadDir(t *testing.T) {
	local := newMemTree(t, map[string]string{
		"b.txt":       "bb",
		"a.txt":       "a",
		"sub/c.txt":   "ccc",
		"sub/d/e.txt": "e",
	})
	ctx := context.Background()

	t.Run("Root", func(t *testing.T) {
		entries, err := local.ReadDir(ctx, ".")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "a.txt", entries[0].RelativePath)
		assert.Equal(t, "b.txt", entries[1].RelativePath)
		assert.Equal(t, "sub", entries[2].RelativePath)
		assert.True(t, entries[2].IsDir)
		assert.True(t, entries[0].IsRegular())
		assert.Equal(t, int64(2), entries[1].Size)
	})

	t.Run("Subdirectory", func(t *testing.T) {
		entries, err := local.ReadDir(ctx, "sub")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "sub/c.txt", entries[0].RelativePath)
		assert.Equal(t, "sub/d", entries[1].RelativePath)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := local.ReadDir(ctx, "nope")
		assert.Error(t, err)
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := local.ReadDir(cancelled, ".")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSymlinkReported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")))

	local, err := NewLocal(dir)
	require.NoError(t, err)

	entries, err := local.ReadDir(context.Background(), ".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsSymlink, "link.txt sorts first")
	assert.False(t, entries[0].IsRegular())
	assert.True(t, entries[1].IsRegular())
}

func TestLocalStatExistsOpen(t *testing.T) {
	local := newMemTree(t, map[string]string{"sub/file.txt": "hello"})
	ctx := context.Background()

	info, err := local.Stat(ctx, "sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "sub/file.txt", info.RelativePath)
	assert.Equal(t, filepath.Join(local.Root(), "sub", "file.txt"), info.Path)

	dirInfo, err := local.Stat(ctx, "sub")
	require.NoError(t, err)
	assert.True(t, dirInfo.IsDir)

	_, err = local.Stat(ctx, "missing")
	assert.Error(t, err)

	ok, err := local.Exists(ctx, "sub/file.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = local.Exists(ctx, "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	rc, err := local.Open(ctx, "sub/file.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalLstat(t *testing.T) {
	t.Run("MemoryFs", func(t *testing.T) {
		local := newMemTree(t, map[string]string{"sub/file.txt": "hello"})

		info, err := local.Lstat(context.Background(), "sub/file.txt")
		require.NoError(t, err)
		assert.True(t, info.IsRegular())
		assert.Equal(t, int64(5), info.Size)

		dir, err := local.Lstat(context.Background(), "sub")
		require.NoError(t, err)
		assert.True(t, dir.IsDir)
		assert.False(t, dir.IsRegular())

		_, err = local.Lstat(context.Background(), "missing")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("SymlinkNotFollowed", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks require privileges on windows")
		}
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("x"), 0o644))
		require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")))

		local, err := NewLocal(dir)
		require.NoError(t, err)

		info, err := local.Lstat(context.Background(), "link.txt")
		require.NoError(t, err)
		assert.True(t, info.IsSymlink)
		assert.False(t, info.IsRegular())

		followed, err := local.Stat(context.Background(), "link.txt")
		require.NoError(t, err)
		assert.True(t, followed.IsRegular())
	})
}

func TestLocalAbs(t *testing.T) {
	local := newMemTree(t, nil)
	assert.Equal(t, local.Root(), local.Abs("."))
	assert.Equal(t, local.Root(), local.Abs(""))
	assert.Equal(t, filepath.Join(local.Root(), "a", "b"), local.Abs("a/b"))
	assert.Equal(t, filepath.Join(local.Root(), "a"), local.Abs("/a/"))
}

// TestBackendInterface verifies that Local implements Backend
func TestBackendInterface(t *testing.T) {
	var _ Backend = (*Local)(nil)
}
