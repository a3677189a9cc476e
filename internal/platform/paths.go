package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeRoot returns the absolute, symlink-resolved form of a tree root
// without a trailing separator. When the path cannot be resolved (for
// example because it does not exist) the cleaned absolute path is returned
// so callers can report it.
func NormalizeRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return trimTrailingSeparator(abs)
}

// CleanRoot returns the absolute, cleaned form of a root without resolving
// symlinks. Used for in-memory filesystems.
func CleanRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return trimTrailingSeparator(abs)
}

func trimTrailingSeparator(p string) string {
	vol := filepath.VolumeName(p)
	for len(p) > len(vol)+1 && strings.HasSuffix(p, string(filepath.Separator)) {
		p = strings.TrimSuffix(p, string(filepath.Separator))
	}
	return p
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// IsNested reports whether child lies strictly inside parent
func IsNested(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ValidatePair rejects identical or nested roots
func ValidatePair(left, right string) error {
	l := NormalizeRoot(left)
	r := NormalizeRoot(right)

	if l == r {
		return &PathError{Path: l, Message: "left and right cannot be the same directory"}
	}
	if IsNested(l, r) {
		return &PathError{Path: r, Message: fmt.Sprintf("right directory is inside left directory %s", l)}
	}
	if IsNested(r, l) {
		return &PathError{Path: l, Message: fmt.Sprintf("left directory is inside right directory %s", r)}
	}
	return nil
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
