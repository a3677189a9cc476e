package output

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/treesync/pkg/models"
)

func sampleDifference(t *testing.T) *models.DirectoryDifference {
	t.Helper()
	d, err := models.NewDirectoryDifference(
		[]string{"new.txt"},
		[]string{"old.txt"},
		[]string{"report.txt"},
		[]string{"same.txt"},
		map[string]string{"report.txt": "reprot.txt"},
	)
	require.NoError(t, err)
	return d
}

func sampleSummary() models.Summary {
	var s models.Summary
	s.Add(models.Success(models.NewCopy("a.txt", "/l", "/r"), 2048))
	s.Add(models.Success(models.NewInfo("b.txt", "conflict skipped"), 0))
	s.Add(models.Failure(models.NewCopy("c.txt", "/l", "/r"), errors.New("disk full")))
	return s
}

func TestNew(t *testing.T) {
	for _, name := range []string{FormatText, FormatJSON, FormatSummary} {
		f, err := New(name, io.Discard, false)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}

	f, err := New("", nil, false)
	require.NoError(t, err)
	assert.Equal(t, FormatText, f.Name())

	_, err = New("xml", io.Discard, false)
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestHumanFormatter_Difference(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHumanFormatter(&buf, false).Difference(sampleDifference(t)))
	out := buf.String()

	assert.Contains(t, out, "Only in left (1)")
	assert.Contains(t, out, "  new.txt\n")
	assert.Contains(t, out, "Only in right (1)")
	assert.Contains(t, out, "  report.txt -> reprot.txt\n")
	assert.NotContains(t, out, "Common (1)")
	assert.Contains(t, out, "1 only in left, 1 only in right, 1 modified, 1 common")

	buf.Reset()
	require.NoError(t, NewHumanFormatter(&buf, true).Difference(sampleDifference(t)))
	assert.Contains(t, buf.String(), "Common (1)")
}

func TestHumanFormatter_Identical(t *testing.T) {
	d, err := models.NewDirectoryDifference(nil, nil, nil, []string{"a", "b"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewHumanFormatter(&buf, false).Difference(d))
	assert.Equal(t, "No differences found (2 common)\n", buf.String())
}

func TestHumanFormatter_Results(t *testing.T) {
	okResult := models.Success(models.NewCopy("a.txt", "/l", "/r"), 2048)
	failed := models.Failure(models.NewUpdate("b.txt", "/l", "b.txt", "/r", "b.txt"), errors.New("denied"))
	info := models.Success(models.NewInfo("c.txt", "conflict skipped"), 0)

	var buf bytes.Buffer
	quiet := NewHumanFormatter(&buf, false)
	for _, r := range []models.OperationResult{okResult, failed, info} {
		require.NoError(t, quiet.Result(r))
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "b.txt: denied")

	buf.Reset()
	verbose := NewHumanFormatter(&buf, true)
	for _, r := range []models.OperationResult{okResult, failed, info} {
		require.NoError(t, verbose.Result(r))
	}
	out := buf.String()
	assert.Contains(t, out, "a.txt (2.0 kB)")
	assert.Contains(t, out, "c.txt: conflict skipped")
}

func TestHumanFormatter_Summary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHumanFormatter(&buf, false).Summary(sampleSummary(), 2*time.Second))
	out := buf.String()

	assert.Contains(t, out, "Sync completed in 2s")
	assert.Contains(t, out, "Succeeded:  1")
	assert.Contains(t, out, "Failed:     1")
	assert.Contains(t, out, "Skipped:    1")
	assert.Contains(t, out, "Data:       2.0 kB")
	assert.Contains(t, out, "Speed:      1.0 kB/s")
	assert.Contains(t, out, "c.txt: disk full")
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewSummaryFormatter(&buf)
	require.NoError(t, f.Difference(sampleDifference(t)))
	require.NoError(t, f.Result(models.Success(models.NewCopy("a.txt", "/l", "/r"), 1)))
	require.NoError(t, f.Summary(sampleSummary(), time.Second))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "only in left: 1, only in right: 1, modified: 1, common: 1, identical: false", lines[0])
	assert.Equal(t, "1 succeeded, 1 failed, 1 skipped, 2.0 kB transferred in 1s", lines[1])
}

func TestJSONFormatter_Difference(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Difference(sampleDifference(t)))

	var decoded models.DirectoryDifference
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, sampleDifference(t).Equal(&decoded))
}

func TestJSONFormatter_Report(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	s := sampleSummary()
	for _, r := range []models.OperationResult{
		models.Success(models.NewCopy("a.txt", "/l", "/r"), 2048),
		models.Failure(models.NewCopy("c.txt", "/l", "/r"), errors.New("disk full")),
	} {
		require.NoError(t, f.Result(r))
	}
	assert.Zero(t, buf.Len(), "results are buffered until Summary")

	require.NoError(t, f.Summary(s, time.Second))

	var report JSONReportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "partial", report.Status)
	assert.Equal(t, int64(2048), report.BytesTransferred)
	assert.Equal(t, int64(1000), report.DurationMs)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "copy", report.Results[0].Type)
	assert.Equal(t, "disk full", report.Results[1].Error)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", status(models.Summary{Succeeded: 1}))
	assert.Equal(t, "partial", status(models.Summary{Failed: 1}))
	assert.Equal(t, "error", status(models.Summary{Failed: 1, SetupError: errors.New("x")}))
}

func TestProgressBar(t *testing.T) {
	bar := NewProgressBar(io.Discard, 0)
	bar.SetTotal(3000)
	assert.False(t, IsTerminal(io.Discard))

	a := models.NewCopy("a.bin", "/l", "/r")
	b := models.NewCopy("b.bin", "/l", "/r")

	bar.Update(a, 1000, 2000)
	bar.Update(b, 500, 1000)
	bar.Update(a, 2000, 2000)
	bar.Update(b, 1000, 1000)
	assert.Equal(t, int64(3000), bar.Current())

	// repeated reports do not double count
	bar.Update(b, 1000, 1000)
	assert.Equal(t, int64(3000), bar.Current())
}

func TestProgressBar_FinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewProgressBar(&buf, 10).Finish()
	assert.Zero(t, buf.Len())
}
