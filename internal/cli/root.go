package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/models"
)

// ExitError carries the process exit code out of a command. Err is
// printed when set.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// setupError reports a failure that happened before any file was compared
func setupError(err error) error {
	return &ExitError{Code: models.ExitSetupError, Err: err}
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treesync",
		Short: "Compare and synchronize directory trees",
		Long: `treesync compares two local directory trees and reconciles them.
It reports files only on one side, files whose content differs and, with
fuzzy matching, files that were renamed. The sync and copy commands turn
those differences into copy, update and delete operations.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewCopyCommand())
	rootCmd.AddCommand(NewSnapshotDiffCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand()
	root.SetArgs(args)
	return run(ctx, root)
}

func run(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return models.ExitOK
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", exit.Err)
		}
		return exit.Code
	}

	// flag and argument errors
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return models.ExitSetupError
}
