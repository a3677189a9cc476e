package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	LogFile    string
	LogFormat  string
	LogLevel   string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/treesync/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "disable colored log output")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "also write logs to file")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log file format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log file level: debug, info, warn, error")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// TreeFlags holds the flags shared by compare, sync and copy
type TreeFlags struct {
	Left           string
	Right          string
	Recursive      bool
	MatchPrecision float64
	SizeTolerance  float64
	Inclusion      string
	NoIgnore       bool
	Output         string
	ScanWorkers    int

	// sync and copy
	Mode      string
	Conflict  string
	Deletions bool
	DryRun    bool
	Parallel  int
	ChunkSize string
	Bandwidth string

	// compare
	Snapshot     bool
	SnapshotFile string
}

var treeFlags TreeFlags

func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&treeFlags.Left, "left", "l", "", "left directory path (required)")
	cmd.Flags().StringVarP(&treeFlags.Right, "right", "r", "", "right directory path (required)")
	cmd.MarkFlagRequired("left")
	cmd.MarkFlagRequired("right")

	cmd.Flags().BoolVar(&treeFlags.Recursive, "recursive", true, "descend into subdirectories")
	cmd.Flags().Float64Var(&treeFlags.MatchPrecision, "match-precision", 1.0, "filename similarity threshold in (0, 1]; below 1 enables fuzzy matching")
	cmd.Flags().Float64Var(&treeFlags.SizeTolerance, "size-tolerance", 0, "relative size difference accepted for fuzzy pairs, 0 compares content")
	cmd.Flags().StringVar(&treeFlags.Inclusion, "inclusion", "all", "right tree scan: all, none, leaf-folders-only")
	cmd.Flags().BoolVar(&treeFlags.NoIgnore, "no-ignore", false, "skip .treesyncignore files (default patterns still apply)")
	cmd.Flags().StringVarP(&treeFlags.Output, "output", "o", "text", "output format: text, json, summary")
	cmd.Flags().IntVar(&treeFlags.ScanWorkers, "scan-workers", 0, "concurrent scan and compare tasks (default: 4 x CPUs)")
}

func addExecutionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&treeFlags.DryRun, "dry-run", false, "plan only, don't touch any file")
	cmd.Flags().IntVarP(&treeFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 5)")
	cmd.Flags().StringVar(&treeFlags.ChunkSize, "chunk-size", "", "streaming copy buffer (e.g., \"1MiB\")")
	cmd.Flags().StringVarP(&treeFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit per second (e.g., \"10MB\", \"1GiB\")")
}
