package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents metadata about a tree entry
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	IsSymlink    bool
	Permissions  uint32
	Mode         fs.FileMode
}

// IsRegular reports whether the entry is a plain file. Symlinks, pipes,
// sockets and devices are not.
func (f FileInfo) IsRegular() bool {
	return f.Mode.IsRegular()
}

// Backend defines the read side of a directory tree.
// All paths are slash-separated and relative to Root.
type Backend interface {
	// Root returns the absolute root of the tree
	Root() string

	// ReadDir lists the direct children of a directory, sorted by name.
	// Symlinks are reported, not followed.
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns metadata for a path, following symlinks
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Lstat returns metadata for a path without following a final symlink
	Lstat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Close releases any resources held by the backend
	Close() error
}
