package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/internal/platform"
	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/snapshot"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two directory trees",
		Long: `Compare the left and right trees and report files present on one side
only, files whose content differs and files that are identical. No file is
modified. Exits with 1 when differences are found.`,
		RunE: runCompare,
	}

	addTreeFlags(cmd)
	cmd.Flags().BoolVar(&treeFlags.Snapshot, "snapshot", false, "save the result as this pair's snapshot")
	cmd.Flags().StringVar(&treeFlags.SnapshotFile, "snapshot-file", "", "save the result to this file")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	env, err := newEnvironment(cmd)
	if err != nil {
		return setupError(err)
	}
	defer env.Close()

	engine := diff.NewEngine(env.cfg.Performance.ScanWorkers, env.logger)
	d, err := engine.Compare(ctx, env.options())
	if err != nil {
		return &ExitError{Code: models.ExitCodeFor(err), Err: err}
	}

	if err := env.formatter.Difference(d); err != nil {
		return err
	}

	if path := snapshotPath(); path != "" {
		if err := snapshot.Save(path, d); err != nil {
			return &ExitError{Code: models.ExitSetupError, Err: err}
		}
		env.logger.Info(ctx, "snapshot saved", logging.Fields{"path": path})
	}

	if d.HasDifferences() {
		return &ExitError{Code: models.ExitDifferences}
	}
	return nil
}

func snapshotPath() string {
	switch {
	case treeFlags.SnapshotFile != "":
		return treeFlags.SnapshotFile
	case treeFlags.Snapshot:
		left, right, err := resolvedPair()
		if err != nil {
			return ""
		}
		return snapshot.DefaultPath(left, right)
	}
	return ""
}

// resolvedPair returns the normalized roots used to key the pair's snapshot
func resolvedPair() (string, string, error) {
	if err := platform.ValidatePair(treeFlags.Left, treeFlags.Right); err != nil {
		return "", "", err
	}
	return platform.NormalizeRoot(treeFlags.Left), platform.NormalizeRoot(treeFlags.Right), nil
}
