// Package snapshot persists comparison results and compares two of them.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/sdejongh/treesync/pkg/models"
)

const (
	// FileExtension of snapshot files
	FileExtension = ".json"
	dirName       = "snapshots"
	appName       = "treesync"
)

// Save writes a difference to path. The file is replaced atomically.
func Save(path string, d *models.DirectoryDifference) error {
	if d == nil {
		d = models.EmptyDifference()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save
func Load(path string) (*models.DirectoryDifference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var d models.DirectoryDifference
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &d, nil
}

// LoadOrEmpty is Load with a missing file read as an empty difference
func LoadOrEmpty(path string) (*models.DirectoryDifference, error) {
	d, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.EmptyDifference(), nil
	}
	return d, err
}

// Diff compares two snapshots by the status each path carries in them.
// Paths only recorded in older are OnlyInLeft, paths only in newer are
// OnlyInRight, paths whose status changed are Modified and the rest are
// Common.
func Diff(older, newer *models.DirectoryDifference) (*models.DirectoryDifference, error) {
	if older == nil {
		older = models.EmptyDifference()
	}
	if newer == nil {
		newer = models.EmptyDifference()
	}

	before := older.Statuses()
	after := newer.Statuses()

	var onlyOld, onlyNew, changed, same []string
	for p, status := range before {
		now, ok := after[p]
		switch {
		case !ok:
			onlyOld = append(onlyOld, p)
		case now != status:
			changed = append(changed, p)
		default:
			same = append(same, p)
		}
	}
	for p := range after {
		if _, ok := before[p]; !ok {
			onlyNew = append(onlyNew, p)
		}
	}

	for _, s := range [][]string{onlyOld, onlyNew, changed, same} {
		sort.Strings(s)
	}
	return models.NewDirectoryDifference(onlyOld, onlyNew, changed, same, nil)
}

// DefaultPath returns the per-pair snapshot location under the user's
// config directory
func DefaultPath(left, right string) string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, _ = os.UserHomeDir()
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, appName, dirName, PairID(left, right)+FileExtension)
}

// PairID is a deterministic identifier for a left/right pair
func PairID(left, right string) string {
	left = filepath.Clean(left)
	right = filepath.Clean(right)

	// FNV-1a
	h := uint64(14695981039346656037)
	for _, c := range left + "|" + right {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return fmt.Sprintf("%016x", h)
}
