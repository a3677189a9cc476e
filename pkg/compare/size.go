package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/treesync/pkg/storage"
)

// SizeComparator treats two files as the same when their sizes differ by at
// most the smaller size times Tolerance. Used to recognise renamed files
// without reading their content.
type SizeComparator struct {
	Tolerance float64
}

// NewSizeComparator creates a size comparator with the given tolerance
func NewSizeComparator(tolerance float64) *SizeComparator {
	return &SizeComparator{Tolerance: tolerance}
}

// Compare compares two files by size only
func (c *SizeComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat left: %w", err)
	}
	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat right: %w", err)
	}

	cmp := &Comparison{LeftPath: leftPath, RightPath: rightPath}
	if WithinTolerance(leftInfo.Size, rightInfo.Size, c.Tolerance) {
		cmp.Result = Same
		cmp.Reason = fmt.Sprintf("sizes within tolerance (left: %d, right: %d)", leftInfo.Size, rightInfo.Size)
	} else {
		cmp.Result = Different
		cmp.Reason = fmt.Sprintf("file sizes differ (left: %d, right: %d)", leftInfo.Size, rightInfo.Size)
	}
	return cmp, nil
}

// Name returns the comparator name
func (c *SizeComparator) Name() string {
	return "size"
}

// WithinTolerance reports whether |a-b| <= min(a,b)*tolerance
func WithinTolerance(a, b int64, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) <= float64(min(a, b))*tolerance
}
