package output

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/sdejongh/treesync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting.
// Sync results are collected and written as one document by Summary.
type JSONFormatter struct {
	writer  io.Writer
	results []JSONResultData
}

// JSONResultData represents one executed operation
type JSONResultData struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	Bytes       int64  `json:"bytes"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

// JSONReportData represents the final sync report
type JSONReportData struct {
	Status           string           `json:"status"`
	Duration         string           `json:"duration"`
	DurationMs       int64            `json:"duration_ms"`
	Succeeded        int              `json:"succeeded"`
	Failed           int              `json:"failed"`
	Skipped          int              `json:"skipped"`
	BytesTransferred int64            `json:"bytes_transferred"`
	AverageSpeed     int64            `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr  string           `json:"average_speed,omitempty"`
	Results          []JSONResultData `json:"results"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w, results: make([]JSONResultData, 0)}
}

// Difference writes d in its snapshot layout
func (f *JSONFormatter) Difference(d *models.DirectoryDifference) error {
	return f.encode(d)
}

// Result records one operation for the final report
func (f *JSONFormatter) Result(r models.OperationResult) error {
	data := JSONResultData{
		Type:        string(r.Operation.Type),
		Path:        r.Operation.RelativePath,
		Source:      r.Operation.SourcePath,
		Destination: r.Operation.DestinationPath,
		Bytes:       r.BytesTransferred,
		Reason:      r.Operation.Reason,
	}
	if r.Err != nil {
		data.Error = r.Err.Error()
	}
	f.results = append(f.results, data)
	return nil
}

// Summary writes the report
func (f *JSONFormatter) Summary(s models.Summary, elapsed time.Duration) error {
	report := JSONReportData{
		Status:           status(s),
		Duration:         elapsed.Round(time.Millisecond).String(),
		DurationMs:       elapsed.Milliseconds(),
		Succeeded:        s.Succeeded,
		Failed:           s.Failed,
		Skipped:          s.Skipped,
		BytesTransferred: s.BytesTransferred,
		Results:          f.results,
	}
	if speed := averageSpeed(s.BytesTransferred, elapsed); speed > 0 {
		report.AverageSpeed = speed
		report.AverageSpeedStr = humanize.Bytes(uint64(speed)) + "/s"
	}
	return f.encode(report)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return FormatJSON
}

func (f *JSONFormatter) encode(v interface{}) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func status(s models.Summary) string {
	switch {
	case s.SetupError != nil:
		return "error"
	case s.Failed > 0:
		return "partial"
	default:
		return "success"
	}
}
