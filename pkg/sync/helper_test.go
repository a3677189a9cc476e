package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// TestHelper provides a left and a right tree for sync tests
type TestHelper struct {
	t        *testing.T
	leftDir  string
	rightDir string
	left     *storage.Local
	right    *storage.Local
}

// NewTestHelper creates a new test helper with temporary directories
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir := t.TempDir()
	leftDir := filepath.Join(tempDir, "left")
	rightDir := filepath.Join(tempDir, "right")
	require.NoError(t, os.MkdirAll(leftDir, 0755))
	require.NoError(t, os.MkdirAll(rightDir, 0755))

	left, err := storage.NewLocal(leftDir)
	require.NoError(t, err)
	right, err := storage.NewLocal(rightDir)
	require.NoError(t, err)

	return &TestHelper{t: t, leftDir: left.Root(), rightDir: right.Root(), left: left, right: right}
}

func (h *TestHelper) CreateLeftFile(name string, content []byte) {
	h.t.Helper()
	h.write(filepath.Join(h.leftDir, filepath.FromSlash(name)), content)
}

func (h *TestHelper) CreateRightFile(name string, content []byte) {
	h.t.Helper()
	h.write(filepath.Join(h.rightDir, filepath.FromSlash(name)), content)
}

func (h *TestHelper) write(path string, content []byte) {
	h.t.Helper()
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, content, 0644))
}

func (h *TestHelper) SetFileModTime(isLeft bool, name string, modTime time.Time) {
	h.t.Helper()
	root := h.rightDir
	if isLeft {
		root = h.leftDir
	}
	require.NoError(h.t, os.Chtimes(filepath.Join(root, filepath.FromSlash(name)), modTime, modTime))
}

func (h *TestHelper) ReadLeft(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.leftDir, filepath.FromSlash(name)))
	require.NoError(h.t, err)
	return string(data)
}

func (h *TestHelper) ReadRight(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.rightDir, filepath.FromSlash(name)))
	require.NoError(h.t, err)
	return string(data)
}

func (h *TestHelper) RightExists(name string) bool {
	_, err := os.Stat(filepath.Join(h.rightDir, filepath.FromSlash(name)))
	return err == nil
}

func difference(t *testing.T, onlyLeft, onlyRight, modified, common []string, matches map[string]string) *models.DirectoryDifference {
	t.Helper()
	d, err := models.NewDirectoryDifference(onlyLeft, onlyRight, modified, common, matches)
	require.NoError(t, err)
	return d
}

func collect(results <-chan models.OperationResult) []models.OperationResult {
	var out []models.OperationResult
	for r := range results {
		out = append(out, r)
	}
	return out
}

func byPath(results []models.OperationResult) map[string]models.OperationResult {
	out := make(map[string]models.OperationResult, len(results))
	for _, r := range results {
		out[r.Operation.RelativePath] = r
	}
	return out
}
