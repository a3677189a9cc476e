package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/treesync/pkg/models"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// execute runs the command line against an isolated home directory
func execute(t *testing.T, args ...string) result {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	code := run(context.Background(), root)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

type pair struct {
	t     *testing.T
	left  string
	right string
}

func newPair(t *testing.T) *pair {
	t.Helper()
	dir := t.TempDir()
	p := &pair{t: t, left: filepath.Join(dir, "left"), right: filepath.Join(dir, "right")}
	require.NoError(t, os.MkdirAll(p.left, 0755))
	require.NoError(t, os.MkdirAll(p.right, 0755))
	return p
}

func (p *pair) write(root, rel, content string) {
	p.t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(p.t, os.WriteFile(full, []byte(content), 0644))
}

func (p *pair) read(root, rel string) string {
	p.t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(p.t, err)
	return string(data)
}

func (p *pair) exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func (p *pair) args(cmd string, extra ...string) []string {
	return append([]string{cmd, "--left", p.left, "--right", p.right}, extra...)
}

// ============== compare ==============

func TestCompare_Identical(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "a.txt", "same")
	p.write(p.right, "a.txt", "same")

	res := execute(t, p.args("compare")...)
	assert.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No differences found (1 common)")
}

func TestCompare_DifferencesJSON(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "only-left.txt", "l")
	p.write(p.right, "only-right.txt", "r")
	p.write(p.left, "mod.txt", "left")
	p.write(p.right, "mod.txt", "rite")

	res := execute(t, p.args("compare", "-o", "json")...)
	assert.Equal(t, models.ExitDifferences, res.code, res.stderr)

	var d models.DirectoryDifference
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &d))
	assert.Equal(t, []string{"only-left.txt"}, d.OnlyInLeft())
	assert.Equal(t, []string{"only-right.txt"}, d.OnlyInRight())
	assert.Equal(t, []string{"mod.txt"}, d.Modified())
}

func TestCompare_Fuzzy(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "report.txt", "quarterly numbers")
	p.write(p.right, "reprot.txt", "quarterly numbers")

	res := execute(t, p.args("compare", "--match-precision", "0.7", "-o", "summary")...)
	assert.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "common: 1, identical: true")
}

func TestCompare_IgnoreFile(t *testing.T) {
	p := newPair(t)
	p.write(p.left, ".treesyncignore", "*.log\n")
	p.write(p.left, "debug.log", "noise")
	p.write(p.left, "a.txt", "a")
	p.write(p.right, "a.txt", "a")

	res := execute(t, p.args("compare")...)
	assert.Equal(t, models.ExitOK, res.code, res.stdout)

	res = execute(t, p.args("compare", "--no-ignore")...)
	assert.Equal(t, models.ExitDifferences, res.code)
	assert.Contains(t, res.stdout, "debug.log")
}

func TestCompare_SetupErrors(t *testing.T) {
	p := newPair(t)

	t.Run("MissingLeft", func(t *testing.T) {
		res := execute(t, "compare", "--left", filepath.Join(p.left, "missing"), "--right", p.right)
		assert.Equal(t, models.ExitSetupError, res.code)
		assert.Contains(t, res.stderr, "invalid directory")
	})

	t.Run("Nested", func(t *testing.T) {
		inner := filepath.Join(p.left, "inner")
		require.NoError(t, os.MkdirAll(inner, 0755))
		res := execute(t, "compare", "--left", p.left, "--right", inner)
		assert.Equal(t, models.ExitSetupError, res.code)
	})

	t.Run("MissingFlag", func(t *testing.T) {
		res := execute(t, "compare", "--left", p.left)
		assert.Equal(t, models.ExitSetupError, res.code)
	})

	t.Run("BadPrecision", func(t *testing.T) {
		res := execute(t, p.args("compare", "--match-precision", "0")...)
		assert.Equal(t, models.ExitSetupError, res.code)
		assert.Contains(t, res.stderr, "match_precision")
	})

	t.Run("BadInclusion", func(t *testing.T) {
		res := execute(t, p.args("compare", "--inclusion", "some")...)
		assert.Equal(t, models.ExitSetupError, res.code)
	})
}

// ============== snapshots ==============

func TestSnapshotWorkflow(t *testing.T) {
	p := newPair(t)
	snaps := t.TempDir()
	first := filepath.Join(snaps, "first.json")
	second := filepath.Join(snaps, "second.json")

	p.write(p.left, "a.txt", "a")
	p.write(p.left, "b.txt", "b")
	p.write(p.right, "b.txt", "b")

	res := execute(t, p.args("compare", "--snapshot-file", first)...)
	assert.Equal(t, models.ExitDifferences, res.code)

	p.write(p.right, "a.txt", "a")
	res = execute(t, p.args("compare", "--snapshot-file", second)...)
	assert.Equal(t, models.ExitOK, res.code)

	res = execute(t, "snapshot-diff", first, second, "-o", "json")
	assert.Equal(t, models.ExitDifferences, res.code, res.stderr)

	var d models.DirectoryDifference
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &d))
	assert.Equal(t, []string{"a.txt"}, d.Modified())
	assert.Equal(t, []string{"b.txt"}, d.Common())

	res = execute(t, "snapshot-diff", second, second)
	assert.Equal(t, models.ExitOK, res.code)

	res = execute(t, "snapshot-diff", first, filepath.Join(snaps, "missing.json"))
	assert.Equal(t, models.ExitSetupError, res.code)
}

// ============== sync and copy ==============

func TestSync_OneWay(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "a.txt", "a")
	p.write(p.left, "dir/b.txt", "b")
	p.write(p.right, "extra.txt", "x")

	res := execute(t, p.args("sync")...)
	require.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Succeeded:  2")
	assert.Equal(t, "b", p.read(p.right, "dir/b.txt"))
	assert.True(t, p.exists(p.right, "extra.txt"))

	res = execute(t, p.args("sync", "--deletions")...)
	require.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.False(t, p.exists(p.right, "extra.txt"))

	res = execute(t, p.args("compare")...)
	assert.Equal(t, models.ExitOK, res.code)
}

func TestSync_TwoWay(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "l.txt", "from left")
	p.write(p.right, "r.txt", "from right")
	p.write(p.left, "c.txt", "left")
	p.write(p.right, "c.txt", "right")

	res := execute(t, p.args("sync", "--mode", "two-way", "--conflict", "keep-left", "-o", "json")...)
	require.Equal(t, models.ExitOK, res.code, res.stderr)

	var report struct {
		Status    string `json:"status"`
		Succeeded int    `json:"succeeded"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, 3, report.Succeeded)

	assert.Equal(t, "from right", p.read(p.left, "r.txt"))
	assert.Equal(t, "from left", p.read(p.right, "l.txt"))
	assert.Equal(t, "left", p.read(p.right, "c.txt"))
}

func TestSync_DryRun(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "a.txt", "a")

	res := execute(t, p.args("sync", "--dry-run", "-v")...)
	require.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "a.txt")
	assert.False(t, p.exists(p.right, "a.txt"))
}

func TestSync_InvalidOptions(t *testing.T) {
	p := newPair(t)

	for name, args := range map[string][]string{
		"Mode":      p.args("sync", "--mode", "sideways"),
		"Conflict":  p.args("sync", "--mode", "two-way", "--conflict", "ask"),
		"Bandwidth": p.args("sync", "--bandwidth", "fast"),
		"ChunkSize": p.args("sync", "--chunk-size", "12"),
		"Format":    p.args("sync", "-o", "xml"),
	} {
		t.Run(name, func(t *testing.T) {
			res := execute(t, args...)
			assert.Equal(t, models.ExitSetupError, res.code)
		})
	}
}

func TestSync_MissingRight(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "a.txt", "a")

	res := execute(t, "sync", "--left", p.left, "--right", filepath.Join(p.right, "missing"), "-o", "summary")
	assert.Equal(t, models.ExitSetupError, res.code)
	assert.Contains(t, res.stdout, "0 succeeded, 1 failed")
}

func TestCopy_NeverDeletes(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "a.txt", "new")
	p.write(p.right, "a.txt", "old")
	p.write(p.right, "extra.txt", "x")

	res := execute(t, p.args("copy", "--bandwidth", "10MiB")...)
	require.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Equal(t, "new", p.read(p.right, "a.txt"))
	assert.True(t, p.exists(p.right, "extra.txt"))

	res = execute(t, p.args("copy", "--deletions")...)
	assert.Equal(t, models.ExitSetupError, res.code)
}

// ============== config and version ==============

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treesync.yaml")

	res := execute(t, "--config", path, "config", "init")
	require.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, path)

	res = execute(t, "--config", path, "config", "init")
	assert.Equal(t, models.ExitSetupError, res.code)

	res = execute(t, "--config", path, "config", "init", "--force")
	assert.Equal(t, models.ExitOK, res.code)

	res = execute(t, "--config", path, "config", "show")
	require.Equal(t, models.ExitOK, res.code)
	assert.Contains(t, res.stdout, "match_precision: 1")
	assert.Contains(t, res.stdout, "max_workers: 5")
}

func TestConfigFileDrivesCompare(t *testing.T) {
	p := newPair(t)
	p.write(p.left, "report.txt", "same bytes")
	p.write(p.right, "reprot.txt", "same bytes")

	cfgPath := filepath.Join(t.TempDir(), "treesync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("match_precision: 0.7\nformat: summary\n"), 0644))

	res := execute(t, append([]string{"--config", cfgPath}, p.args("compare")...)...)
	assert.Equal(t, models.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "identical: true")

	// flags win over the file
	res = execute(t, append([]string{"--config", cfgPath}, p.args("compare", "--match-precision", "1")...)...)
	assert.Equal(t, models.ExitDifferences, res.code)
}

func TestVersion(t *testing.T) {
	res := execute(t, "version", "--short")
	assert.Equal(t, models.ExitOK, res.code)
	assert.Equal(t, Version+"\n", res.stdout)

	res = execute(t, "version")
	assert.Contains(t, res.stdout, "treesync "+Version)
}

// ============== helpers ==============

func TestParseMode(t *testing.T) {
	mode, err := parseMode("one-way", models.Skip)
	require.NoError(t, err)
	assert.Equal(t, models.OneWay, mode.Direction)

	mode, err = parseMode("bidirectional", models.KeepRight)
	require.NoError(t, err)
	assert.Equal(t, models.TwoWayMode(models.KeepRight), mode)

	_, err = parseMode("two-way", "ask")
	assert.Error(t, err)

	_, err = parseMode("both", models.Skip)
	assert.Error(t, err)
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"10MB", 10_000_000, false},
		{"1MiB", 1 << 20, false},
		{"fast", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBandwidth(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
