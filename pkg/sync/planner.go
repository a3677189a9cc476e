package sync

import (
	"context"
	"sort"

	"github.com/sdejongh/treesync/pkg/compare"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// Operation reasons
const (
	ReasonOnlyInLeft      = "only in left"
	ReasonOnlyInRight     = "only in right"
	ReasonContentDiffers  = "content differs"
	ReasonKeepLeft        = "conflict resolved: keep left"
	ReasonKeepRight       = "conflict resolved: keep right"
	ReasonLeftNewer       = "conflict resolved: left is newer"
	ReasonRightNewer      = "conflict resolved: right is newer"
	ReasonConflictSkipped = "conflict skipped"
	ReasonSameTimestamp   = "conflict skipped: same modification time"
	ReasonRetained        = "retained: deletions disabled"
)

// Planner turns a difference into file operations
type Planner struct {
	// ReportSkipped emits info operations for skipped conflicts and
	// retained right-only files
	ReportSkipped bool
	Logger        logging.Logger
}

// NewPlanner creates a planner
func NewPlanner(reportSkipped bool, logger logging.Logger) *Planner {
	return &Planner{ReportSkipped: reportSkipped, Logger: logger}
}

// Plan builds the operation list for diff between left and right, sorted
// by relative path. Only keep-newest conflict resolution touches the
// filesystem; a failure to read timestamps aborts with AccessDeniedError.
func (p *Planner) Plan(ctx context.Context, diff *models.DirectoryDifference, left, right storage.Backend, mode models.SyncMode, deletions bool) ([]models.FileOperation, error) {
	if diff == nil {
		diff = models.EmptyDifference()
	}

	var ops []models.FileOperation
	var err error

	switch mode.Direction {
	case models.TwoWay:
		ops, err = p.planTwoWay(ctx, diff, left, right, mode.Conflict)
	default:
		ops = p.planOneWay(diff, left, right, deletions)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].RelativePath < ops[j].RelativePath
	})

	logging.OrNull(p.Logger).Debug(ctx, "plan built", logging.Fields{
		"mode":       mode.String(),
		"deletions":  deletions,
		"operations": len(ops),
	})
	return ops, nil
}

func (p *Planner) planOneWay(diff *models.DirectoryDifference, left, right storage.Backend, deletions bool) []models.FileOperation {
	l, r := left.Root(), right.Root()
	var ops []models.FileOperation

	for _, rel := range diff.OnlyInLeft() {
		ops = append(ops, withReason(models.NewCopy(rel, l, r), ReasonOnlyInLeft))
	}
	for _, rel := range diff.Modified() {
		ops = append(ops, withReason(models.NewUpdate(rel, l, rel, r, diff.MatchFor(rel)), ReasonContentDiffers))
	}
	for _, rel := range diff.OnlyInRight() {
		switch {
		case deletions:
			ops = append(ops, withReason(models.NewDelete(rel, r), ReasonOnlyInRight))
		case p.ReportSkipped:
			ops = append(ops, models.NewInfo(rel, ReasonRetained))
		}
	}
	return ops
}

func (p *Planner) planTwoWay(ctx context.Context, diff *models.DirectoryDifference, left, right storage.Backend, resolution models.ConflictResolution) ([]models.FileOperation, error) {
	l, r := left.Root(), right.Root()
	timestamps := compare.NewTimestampComparator()
	var ops []models.FileOperation

	for _, rel := range diff.OnlyInLeft() {
		ops = append(ops, withReason(models.NewCopy(rel, l, r), ReasonOnlyInLeft))
	}
	for _, rel := range diff.OnlyInRight() {
		ops = append(ops, withReason(models.NewCopy(rel, r, l), ReasonOnlyInRight))
	}

	for _, rel := range diff.Modified() {
		rightRel := diff.MatchFor(rel)
		keepLeft := models.NewUpdate(rel, l, rel, r, rightRel)
		keepRight := models.NewUpdate(rel, r, rightRel, l, rel)

		switch resolution {
		case models.KeepLeft:
			ops = append(ops, withReason(keepLeft, ReasonKeepLeft))
		case models.KeepRight:
			ops = append(ops, withReason(keepRight, ReasonKeepRight))
		case models.KeepNewest:
			side, err := timestamps.Newest(ctx, left, right, rel, rightRel)
			if err != nil {
				return nil, err
			}
			switch side {
			case compare.LeftSide:
				ops = append(ops, withReason(keepLeft, ReasonLeftNewer))
			case compare.RightSide:
				ops = append(ops, withReason(keepRight, ReasonRightNewer))
			default:
				if p.ReportSkipped {
					ops = append(ops, models.NewInfo(rel, ReasonSameTimestamp))
				}
			}
		default:
			if p.ReportSkipped {
				ops = append(ops, models.NewInfo(rel, ReasonConflictSkipped))
			}
		}
	}
	return ops, nil
}

func withReason(op models.FileOperation, reason string) models.FileOperation {
	op.Reason = reason
	return op
}
