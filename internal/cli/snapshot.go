package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/output"
	"github.com/sdejongh/treesync/pkg/snapshot"
)

// NewSnapshotDiffCommand creates the snapshot-diff command
func NewSnapshotDiffCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot-diff <old> <new>",
		Short: "Compare two saved comparison snapshots",
		Long: `Compare two snapshots written by compare --snapshot-file. Paths only in
the old snapshot are reported as only in left, paths only in the new one as
only in right, and paths whose status changed as modified.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.New(format, cmd.OutOrStdout(), globalFlags.Verbose)
			if err != nil {
				return setupError(err)
			}

			older, err := snapshot.Load(args[0])
			if err != nil {
				return setupError(err)
			}
			newer, err := snapshot.Load(args[1])
			if err != nil {
				return setupError(err)
			}

			d, err := snapshot.Diff(older, newer)
			if err != nil {
				return setupError(err)
			}
			if err := formatter.Difference(d); err != nil {
				return err
			}

			if d.HasDifferences() {
				return &ExitError{Code: models.ExitDifferences}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", output.FormatText, "output format: text, json, summary")

	return cmd
}
