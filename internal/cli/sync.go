package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/output"
	"github.com/sdejongh/treesync/pkg/ratelimit"
	"github.com/sdejongh/treesync/pkg/sync"
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize two directory trees",
		Long: `Compare the left and right trees and apply the operations that
reconcile them. One-way sync copies and updates from left to right and only
deletes right-only files with --deletions. Two-way sync copies missing files
in both directions and resolves files modified on both sides with --conflict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, false)
		},
	}

	addTreeFlags(cmd)
	addExecutionFlags(cmd)
	cmd.Flags().StringVarP(&treeFlags.Mode, "mode", "m", "one-way", "sync mode: one-way, two-way")
	cmd.Flags().StringVar(&treeFlags.Conflict, "conflict", string(models.KeepNewest), "two-way conflict resolution: keep-newest, keep-left, keep-right, skip")
	cmd.Flags().BoolVar(&treeFlags.Deletions, "deletions", false, "one-way: delete right files that do not exist on the left")

	return cmd
}

// NewCopyCommand creates the copy command, a one-way sync that never deletes
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy new and changed files from left to right",
		Long: `Copy files that are missing or different on the right from the left
tree. Nothing is ever deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, true)
		},
	}

	addTreeFlags(cmd)
	addExecutionFlags(cmd)

	return cmd
}

func runSync(cmd *cobra.Command, copyOnly bool) error {
	ctx := commandContext(cmd)

	env, err := newEnvironment(cmd)
	if err != nil {
		return setupError(err)
	}
	defer env.Close()

	mode := models.OneWayMode()
	deletions := false
	if !copyOnly {
		if mode, err = parseMode(treeFlags.Mode, env.cfg.ConflictResolution); err != nil {
			return setupError(err)
		}
		deletions = env.cfg.Deletions
	}

	executor := newExecutor(env)
	syncer := sync.NewSyncer(
		diff.NewEngine(env.cfg.Performance.ScanWorkers, env.logger),
		sync.NewPlanner(env.cfg.Verbose, env.logger),
		executor,
		env.logger,
	)

	var bar *output.ProgressBar
	if showProgress(env) {
		bar = output.NewProgressBar(env.stderr, 0)
		executor.OnProgress = bar.Update
		syncer.OnPlan = func(ops []models.FileOperation) {
			bar.SetTotal(executor.PlannedBytes(ops))
			bar.Start()
		}
	}

	req := sync.Request{
		Left:           treeFlags.Left,
		Right:          treeFlags.Right,
		Mode:           mode,
		Recursive:      env.cfg.Recursive,
		Deletions:      deletions,
		DryRun:         env.cfg.DryRun,
		Ignore:         env.matcher,
		MatchPrecision: env.cfg.MatchPrecision,
		SizeTolerance:  env.cfg.SizeTolerance,
		Inclusion:      env.cfg.Inclusion,
	}

	start := time.Now()
	var summary models.Summary
	for r := range syncer.Sync(ctx, req) {
		summary.Add(r)
		if err := env.formatter.Result(r); err != nil {
			return err
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := env.formatter.Summary(summary, time.Since(start)); err != nil {
		return err
	}

	if code := summary.ExitCode(); code != models.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func newExecutor(env *environment) *sync.Executor {
	cfg := env.cfg
	return &sync.Executor{
		Workers:   cfg.Performance.MaxWorkers,
		ChunkSize: cfg.Performance.ChunkSize,
		Limiter:   ratelimit.NewLimiter(cfg.Performance.BandwidthLimit),
		Progress:  sync.NewProgress(),
		Logger:    env.logger,
	}
}

func showProgress(env *environment) bool {
	return env.cfg.Format == output.FormatText &&
		!globalFlags.Quiet &&
		!env.cfg.DryRun &&
		output.IsTerminal(env.stderr)
}

// parseMode maps a mode name to a SyncMode
func parseMode(name string, conflict models.ConflictResolution) (models.SyncMode, error) {
	switch name {
	case "", "one-way", "oneway":
		return models.OneWayMode(), nil
	case "two-way", "twoway", "bidirectional":
		if _, err := models.ParseConflictResolution(string(conflict)); err != nil {
			return models.SyncMode{}, err
		}
		return models.TwoWayMode(conflict), nil
	}
	return models.SyncMode{}, &models.ValidationError{
		Field:   "mode",
		Message: fmt.Sprintf("invalid sync mode %q (valid: one-way, two-way)", name),
	}
}
