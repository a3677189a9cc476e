package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sdejongh/treesync/internal/platform"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/spf13/afero"
)

// Local is a filesystem-based tree backend
type Local struct {
	fs       afero.Fs
	rootPath string
}

// NewLocal opens a tree on the operating system filesystem.
// The root is made absolute and symlink-resolved.
func NewLocal(rootPath string) (*Local, error) {
	return NewLocalFs(afero.NewOsFs(), rootPath)
}

// NewLocalFs opens a tree on an arbitrary afero filesystem. The root must
// exist and be a directory, otherwise an InvalidDirectoryError is returned.
func NewLocalFs(fsys afero.Fs, rootPath string) (*Local, error) {
	var root string
	if _, ok := fsys.(*afero.OsFs); ok {
		root = platform.NormalizeRoot(rootPath)
	} else {
		root = platform.CleanRoot(rootPath)
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, &models.InvalidDirectoryError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &models.InvalidDirectoryError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	return &Local{fs: fsys, rootPath: root}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Abs joins a relative path onto the root
func (l *Local) Abs(rel string) string {
	rel = models.NormalizeRelative(rel)
	if rel == "." {
		return l.rootPath
	}
	return filepath.Join(l.rootPath, filepath.FromSlash(rel))
}

// ReadDir lists the direct children of a directory
func (l *Local) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := models.NormalizeRelative(dir)
	entries, err := afero.ReadDir(l.fs, l.Abs(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", rel, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		childRel := entry.Name()
		if rel != "." {
			childRel = path.Join(rel, entry.Name())
		}
		files = append(files, toFileInfo(l.Abs(childRel), childRel, entry))
	}
	return files, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, rel string) (*FileInfo, error) {
	rel = models.NormalizeRelative(rel)
	full := l.Abs(rel)

	info, err := l.fs.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	fi := toFileInfo(full, rel, info)
	return &fi, nil
}

// Lstat returns file metadata without following a final symlink. On
// filesystems without lstat support it behaves like Stat.
func (l *Local) Lstat(ctx context.Context, rel string) (*FileInfo, error) {
	rel = models.NormalizeRelative(rel)
	full := l.Abs(rel)

	var info os.FileInfo
	var err error
	if lstater, ok := l.fs.(afero.Lstater); ok {
		info, _, err = lstater.LstatIfPossible(full)
	} else {
		info, err = l.fs.Stat(full)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lstat %s: %w", rel, err)
	}

	fi := toFileInfo(full, rel, info)
	return &fi, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, rel string) (bool, error) {
	_, err := l.fs.Stat(l.Abs(rel))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	file, err := l.fs.Open(l.Abs(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func toFileInfo(full, rel string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:         full,
		RelativePath: rel,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		IsSymlink:    info.Mode()&os.ModeSymlink != 0,
		Permissions:  uint32(info.Mode().Perm()),
		Mode:         info.Mode(),
	}
}
