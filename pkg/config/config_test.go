package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/treesync/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Recursive)
	assert.Equal(t, 1.0, cfg.MatchPrecision)
	assert.False(t, cfg.Deletions)
	assert.Equal(t, models.IncludeAll, cfg.Inclusion)
	assert.Equal(t, 5, cfg.Performance.MaxWorkers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"ZeroPrecision", func(c *Config) { c.MatchPrecision = 0 }, "match_precision"},
		{"PrecisionAboveOne", func(c *Config) { c.MatchPrecision = 1.5 }, "match_precision"},
		{"NegativeTolerance", func(c *Config) { c.SizeTolerance = -0.1 }, "size_tolerance"},
		{"UnknownConflict", func(c *Config) { c.ConflictResolution = "ask" }, "conflict_resolution"},
		{"UnknownInclusion", func(c *Config) { c.Inclusion = "some" }, "inclusion"},
		{"UnknownFormat", func(c *Config) { c.Format = "xml" }, "format"},
		{"NoWorkers", func(c *Config) { c.Performance.MaxWorkers = 0 }, "performance.max_workers"},
		{"NegativeScanWorkers", func(c *Config) { c.Performance.ScanWorkers = -1 }, "performance.scan_workers"},
		{"TinyChunk", func(c *Config) { c.Performance.ChunkSize = 10 }, "performance.chunk_size"},
		{"NegativeBandwidth", func(c *Config) { c.Performance.BandwidthLimit = -1 }, "performance.bandwidth_limit"},
		{"LogFormat", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"LogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("EmptyInclusionMeansAll", func(t *testing.T) {
		cfg := Default()
		cfg.Inclusion = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.MatchPrecision = 0.8
	cfg.Deletions = true
	cfg.Inclusion = models.IncludeLeafFoldersOnly
	cfg.Performance.BandwidthLimit = 1 << 20
	cfg.Logging.File = "/tmp/treesync.log"
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match_precision: 0.9\nperformance:\n  max_workers: 8\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.MatchPrecision)
	assert.Equal(t, 8, cfg.Performance.MaxWorkers)
	assert.Equal(t, 1024*1024, cfg.Performance.ChunkSize)
	assert.True(t, cfg.Recursive)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("recursive: [unclosed"), 0644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("match_precision: 2\n"), 0644))
	_, err = LoadFromFile(invalid)
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Format = "xml"
	assert.Error(t, SaveToFile(cfg, filepath.Join(t.TempDir(), "config.yaml")))
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("treesync", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := Parse([]byte("comparison: md5\n"))
		assert.Error(t, err)
	})
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Default()))
	out := buf.String()
	assert.Contains(t, out, "match_precision: 1")
	assert.Contains(t, out, "conflict_resolution: keep-newest")
	assert.Contains(t, out, "  max_workers: 5")

	parsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, Default(), parsed)
}

func TestResolve(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Resolve(filepath.Join(t.TempDir(), "explicit.yaml"))
	assert.Error(t, err)
}
