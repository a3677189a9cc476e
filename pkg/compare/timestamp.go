package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// Side names one of the two trees
type Side int

const (
	// Neither side is newer
	Neither Side = iota
	// LeftSide holds the newer file
	LeftSide
	// RightSide holds the newer file
	RightSide
)

func (s Side) String() string {
	switch s {
	case LeftSide:
		return "left"
	case RightSide:
		return "right"
	default:
		return "neither"
	}
}

// TimestampComparator decides which copy of a file was modified last
type TimestampComparator struct{}

// NewTimestampComparator creates a new timestamp comparator
func NewTimestampComparator() *TimestampComparator {
	return &TimestampComparator{}
}

// Newest returns the side with the strictly later modification time, or
// Neither when they are equal. A stat failure is an AccessDeniedError.
func (c *TimestampComparator) Newest(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (Side, error) {
	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return Neither, models.AccessDenied(fmt.Sprintf("cannot read attributes of %s", leftPath), err)
	}
	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return Neither, models.AccessDenied(fmt.Sprintf("cannot read attributes of %s", rightPath), err)
	}

	switch {
	case leftInfo.ModTime.After(rightInfo.ModTime):
		return LeftSide, nil
	case rightInfo.ModTime.After(leftInfo.ModTime):
		return RightSide, nil
	default:
		return Neither, nil
	}
}

// Compare reports Same when both files carry the same modification time
func (c *TimestampComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	side, err := c.Newest(ctx, left, right, leftPath, rightPath)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{LeftPath: leftPath, RightPath: rightPath, Result: Same, Reason: "timestamps match"}
	if side != Neither {
		cmp.Result = Different
		cmp.Reason = fmt.Sprintf("%s is newer", side)
	}
	return cmp, nil
}

// Name returns the comparator name
func (c *TimestampComparator) Name() string {
	return "timestamp"
}
