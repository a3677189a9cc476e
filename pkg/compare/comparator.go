package compare

import (
	"context"

	"github.com/sdejongh/treesync/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are considered equal
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	LeftPath  string
	RightPath string
	Result    Result
	Reason    string
}

// Equal reports whether the comparison found the files equal
func (c *Comparison) Equal() bool {
	return c != nil && c.Result == Same
}

// Comparator defines the interface for file comparison algorithms.
// Errors are returned only when a file cannot be read.
type Comparator interface {
	// Compare compares two files and returns the result
	Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
