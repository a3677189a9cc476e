package output

import (
	"io"
	"time"

	"github.com/sdejongh/treesync/pkg/models"
)

// Output format names
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatSummary = "summary"
)

// Formatter defines the interface for output formatting
// Implementations include text, JSON and summary formatters
type Formatter interface {
	// Difference renders the result of a comparison
	Difference(d *models.DirectoryDifference) error

	// Result reports one executed operation
	Result(r models.OperationResult) error

	// Summary finalizes output after the result stream is drained
	Summary(s models.Summary, elapsed time.Duration) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for a format name
func New(format string, w io.Writer, verbose bool) (Formatter, error) {
	if w == nil {
		w = io.Discard
	}
	switch format {
	case FormatText, "":
		return NewHumanFormatter(w, verbose), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatSummary:
		return NewSummaryFormatter(w), nil
	}
	return nil, &models.ValidationError{
		Field:   "format",
		Message: "must be 'text', 'json', or 'summary'",
	}
}

func averageSpeed(bytes int64, elapsed time.Duration) int64 {
	if elapsed.Seconds() <= 0 {
		return 0
	}
	return int64(float64(bytes) / elapsed.Seconds())
}
