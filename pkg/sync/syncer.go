// Package sync plans and applies the file operations that reconcile two
// directory trees.
package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/ignore"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
)

// Request describes one synchronization
type Request struct {
	Left           string
	Right          string
	Mode           models.SyncMode
	Recursive      bool
	Deletions      bool
	DryRun         bool
	Ignore         *ignore.Matcher
	MatchPrecision float64
	SizeTolerance  float64
	Inclusion      models.ScanInclusionMode
}

func (r Request) options() diff.Options {
	return diff.Options{
		Left:           r.Left,
		Right:          r.Right,
		Recursive:      r.Recursive,
		Inclusion:      r.Inclusion,
		Ignore:         r.Ignore,
		MatchPrecision: r.MatchPrecision,
		SizeTolerance:  r.SizeTolerance,
	}
}

// Syncer chains comparison, planning and execution
type Syncer struct {
	Engine   *diff.Engine
	Planner  *Planner
	Executor *Executor
	Logger   logging.Logger

	// OnPlan, when set, receives the planned operations before execution
	OnPlan func(ops []models.FileOperation)
}

// NewSyncer wires a syncer from its parts
func NewSyncer(engine *diff.Engine, planner *Planner, executor *Executor, logger logging.Logger) *Syncer {
	return &Syncer{Engine: engine, Planner: planner, Executor: executor, Logger: logger}
}

// Plan compares the trees and returns the operations a sync would run
func (s *Syncer) Plan(ctx context.Context, req Request) ([]models.FileOperation, *models.DirectoryDifference, error) {
	engine := s.Engine
	if engine == nil {
		engine = &diff.Engine{Logger: s.Logger}
	}
	planner := s.Planner
	if planner == nil {
		planner = NewPlanner(false, s.Logger)
	}

	d, err := engine.Compare(ctx, req.options())
	if err != nil {
		return nil, nil, err
	}

	left, right, err := engine.Open(req.Left, req.Right)
	if err != nil {
		return nil, nil, err
	}

	ops, err := planner.Plan(ctx, d, left, right, req.Mode, req.Deletions)
	if err != nil {
		return nil, nil, err
	}
	return ops, d, nil
}

// Sync runs a full synchronization and streams one result per planned
// operation. A failure before execution is reported as a single failed
// compareError operation.
func (s *Syncer) Sync(ctx context.Context, req Request) <-chan models.OperationResult {
	session := uuid.NewString()
	logger := logging.OrNull(s.Logger).WithFields(logging.Fields{"session": session})

	logger.Info(ctx, "sync started", logging.Fields{
		"left":    req.Left,
		"right":   req.Right,
		"mode":    req.Mode.String(),
		"dry_run": req.DryRun,
	})

	ops, _, err := s.Plan(ctx, req)
	if err != nil {
		logger.Error(ctx, "sync aborted before execution", err, nil)
		failed := make(chan models.OperationResult, 1)
		failed <- models.Failure(models.NewCompareError(err.Error()), err)
		close(failed)
		return failed
	}

	logger.Info(ctx, "sync planned", countByType(ops))
	if s.OnPlan != nil {
		s.OnPlan(ops)
	}

	executor := Executor{}
	if s.Executor != nil {
		executor = *s.Executor
	}
	executor.Logger = logger

	if req.DryRun {
		return executor.Flush(ops)
	}
	return executor.Execute(ctx, ops)
}

// Summarize drains a result stream into totals
func Summarize(results <-chan models.OperationResult) models.Summary {
	var summary models.Summary
	for r := range results {
		summary.Add(r)
	}
	return summary
}

func countByType(ops []models.FileOperation) logging.Fields {
	fields := logging.Fields{"operations": len(ops)}
	for _, op := range ops {
		key := string(op.Type)
		n, _ := fields[key].(int)
		fields[key] = n + 1
	}
	return fields
}
