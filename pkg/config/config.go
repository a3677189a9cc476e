package config

import (
	"fmt"
	"strings"

	"github.com/sdejongh/treesync/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Recursive          bool                      `yaml:"recursive"`
	MatchPrecision     float64                   `yaml:"match_precision"`
	SizeTolerance      float64                   `yaml:"size_tolerance"`
	Deletions          bool                      `yaml:"deletions"`
	ConflictResolution models.ConflictResolution `yaml:"conflict_resolution"`
	Inclusion          models.ScanInclusionMode  `yaml:"inclusion"`
	Format             string                    `yaml:"format"` // "text", "json" or "summary"
	Verbose            bool                      `yaml:"verbose"`
	DryRun             bool                      `yaml:"dry_run"`
	NoIgnore           bool                      `yaml:"no_ignore"`

	Performance PerformanceConfig `yaml:"performance"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`  // executor pool size
	ScanWorkers    int   `yaml:"scan_workers"` // 0 = 4 x NumCPU
	ChunkSize      int   `yaml:"chunk_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"` // bytes per second, 0 = unlimited
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	File   string `yaml:"file"`   // Log file path (empty = console only)
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
}

// Output formats
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatSummary = "summary"
)

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Recursive:          true,
		MatchPrecision:     1.0,
		SizeTolerance:      0,
		Deletions:          false,
		ConflictResolution: models.KeepNewest,
		Inclusion:          models.IncludeAll,
		Format:             FormatText,
		Performance: PerformanceConfig{
			MaxWorkers:     5,
			ScanWorkers:    0,
			ChunkSize:      1024 * 1024,
			BandwidthLimit: 0,
		},
		Logging: LoggingConfig{
			Format: "json",
			Level:  "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MatchPrecision <= 0 || c.MatchPrecision > 1 {
		return &models.ValidationError{
			Field:   "match_precision",
			Message: fmt.Sprintf("must be in (0, 1], got %v", c.MatchPrecision),
		}
	}

	if c.SizeTolerance < 0 || c.SizeTolerance > 1 {
		return &models.ValidationError{
			Field:   "size_tolerance",
			Message: fmt.Sprintf("must be in [0, 1], got %v", c.SizeTolerance),
		}
	}

	if _, err := models.ParseConflictResolution(string(c.ConflictResolution)); err != nil {
		return err
	}

	if _, err := models.ParseScanInclusionMode(string(c.Inclusion)); err != nil {
		return err
	}

	validFormats := map[string]bool{FormatText: true, FormatJSON: true, FormatSummary: true}
	if !validFormats[c.Format] {
		return &models.ValidationError{
			Field:   "format",
			Message: "must be 'text', 'json', or 'summary'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.ScanWorkers < 0 {
		return &models.ValidationError{
			Field:   "performance.scan_workers",
			Message: "must not be negative",
		}
	}

	if c.Performance.ChunkSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.chunk_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
