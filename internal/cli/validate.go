package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/internal/platform"
	"github.com/sdejongh/treesync/pkg/config"
	"github.com/sdejongh/treesync/pkg/models"
)

// validateTreeFlags rejects empty, identical or nested roots before any
// scan starts. Existence is checked by the comparison itself.
func validateTreeFlags() error {
	if err := platform.ValidatePath(treeFlags.Left); err != nil {
		return &models.ValidationError{Field: "left", Message: err.Error()}
	}
	if err := platform.ValidatePath(treeFlags.Right); err != nil {
		return &models.ValidationError{Field: "right", Message: err.Error()}
	}
	if err := platform.ValidatePair(treeFlags.Left, treeFlags.Right); err != nil {
		return &models.ValidationError{Field: "right", Message: err.Error()}
	}
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Resolve(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with the flags set on the
// command line
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("recursive") {
		cfg.Recursive = treeFlags.Recursive
	}
	if changed("match-precision") {
		cfg.MatchPrecision = treeFlags.MatchPrecision
	}
	if changed("size-tolerance") {
		cfg.SizeTolerance = treeFlags.SizeTolerance
	}
	if changed("inclusion") {
		cfg.Inclusion = models.ScanInclusionMode(treeFlags.Inclusion)
	}
	if changed("no-ignore") {
		cfg.NoIgnore = treeFlags.NoIgnore
	}
	if changed("output") {
		cfg.Format = treeFlags.Output
	}
	if changed("scan-workers") {
		cfg.Performance.ScanWorkers = treeFlags.ScanWorkers
	}
	if changed("conflict") {
		cfg.ConflictResolution = models.ConflictResolution(treeFlags.Conflict)
	}
	if changed("deletions") {
		cfg.Deletions = treeFlags.Deletions
	}
	if changed("dry-run") {
		cfg.DryRun = treeFlags.DryRun
	}
	if changed("parallel") {
		cfg.Performance.MaxWorkers = treeFlags.Parallel
	}
	if changed("chunk-size") {
		n, err := humanize.ParseBytes(treeFlags.ChunkSize)
		if err != nil {
			return &models.ValidationError{Field: "chunk-size", Message: err.Error()}
		}
		cfg.Performance.ChunkSize = int(n)
	}
	if changed("bandwidth") {
		n, err := parseBandwidth(treeFlags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = n
	}

	if globalFlags.Verbose {
		cfg.Verbose = true
	}
	if globalFlags.LogFile != "" {
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}

	return cfg.Validate()
}

// parseBandwidth accepts human sizes such as "10MB" or "1GiB"; an empty
// value or "0" means unlimited
func parseBandwidth(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, &models.ValidationError{Field: "bandwidth", Message: fmt.Sprintf("invalid bandwidth %q: %v", s, err)}
	}
	return int64(n), nil
}
