package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/treesync/pkg/models"
)

// HumanFormatter formats output in human-readable text
type HumanFormatter struct {
	writer  io.Writer
	verbose bool
}

// NewHumanFormatter creates a text formatter. Verbose output also lists
// common files and every successful operation.
func NewHumanFormatter(w io.Writer, verbose bool) *HumanFormatter {
	return &HumanFormatter{writer: w, verbose: verbose}
}

// Difference prints each non-empty partition of d
func (f *HumanFormatter) Difference(d *models.DirectoryDifference) error {
	matches := d.Matches()

	sections := []struct {
		label string
		paths []string
		show  bool
	}{
		{"Only in left", d.OnlyInLeft(), true},
		{"Only in right", d.OnlyInRight(), true},
		{"Modified", d.Modified(), true},
		{"Common", d.Common(), f.verbose},
	}

	for _, s := range sections {
		if !s.show || len(s.paths) == 0 {
			continue
		}
		label := fmt.Sprintf("%s (%d)", s.label, len(s.paths))
		fmt.Fprintf(f.writer, "%s\n%s\n", label, strings.Repeat("-", len(label)))
		for _, p := range s.paths {
			if right, ok := matches[p]; ok {
				fmt.Fprintf(f.writer, "  %s -> %s\n", p, right)
				continue
			}
			fmt.Fprintf(f.writer, "  %s\n", p)
		}
		fmt.Fprintln(f.writer)
	}

	sum := d.Summary()
	if sum.Identical {
		fmt.Fprintf(f.writer, "No differences found (%d common)\n", sum.Common)
		return nil
	}
	fmt.Fprintf(f.writer, "%d only in left, %d only in right, %d modified, %d common\n",
		sum.OnlyInLeft, sum.OnlyInRight, sum.Modified, sum.Common)
	return nil
}

// Result prints failures, and successes when verbose
func (f *HumanFormatter) Result(r models.OperationResult) error {
	op := r.Operation
	switch {
	case !r.Succeeded():
		fmt.Fprintf(f.writer, "✗ %-7s %s: %v\n", op.Type, displayPath(op), r.Err)
	case !f.verbose:
	case op.Type == models.OpInfo:
		fmt.Fprintf(f.writer, "- %-7s %s: %s\n", "skip", op.RelativePath, op.Reason)
	case op.Type == models.OpDelete:
		fmt.Fprintf(f.writer, "✓ %-7s %s\n", op.Type, op.RelativePath)
	default:
		fmt.Fprintf(f.writer, "✓ %-7s %s (%s)\n", op.Type, displayPath(op), humanize.Bytes(uint64(r.BytesTransferred)))
	}
	return nil
}

// Summary prints the totals of a sync
func (f *HumanFormatter) Summary(s models.Summary, elapsed time.Duration) error {
	fmt.Fprintf(f.writer, "\nSync completed in %s\n\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "  Succeeded:  %d\n", s.Succeeded)
	fmt.Fprintf(f.writer, "  Failed:     %d\n", s.Failed)
	fmt.Fprintf(f.writer, "  Skipped:    %d\n", s.Skipped)
	fmt.Fprintf(f.writer, "  Data:       %s\n", humanize.Bytes(uint64(s.BytesTransferred)))
	if speed := averageSpeed(s.BytesTransferred, elapsed); speed > 0 {
		fmt.Fprintf(f.writer, "  Speed:      %s/s\n", humanize.Bytes(uint64(speed)))
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, r := range s.Failures {
			fmt.Fprintf(f.writer, "  %s: %v\n", displayPath(r.Operation), r.Err)
		}
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return FormatText
}

// setup failures carry no path
func displayPath(op models.FileOperation) string {
	if op.RelativePath == "" {
		return "(setup)"
	}
	return op.RelativePath
}

// SummaryFormatter prints a single line per command
type SummaryFormatter struct {
	writer io.Writer
}

// NewSummaryFormatter creates a one-line formatter
func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{writer: w}
}

// Difference prints the partition counts
func (f *SummaryFormatter) Difference(d *models.DirectoryDifference) error {
	sum := d.Summary()
	fmt.Fprintf(f.writer, "only in left: %d, only in right: %d, modified: %d, common: %d, identical: %t\n",
		sum.OnlyInLeft, sum.OnlyInRight, sum.Modified, sum.Common, sum.Identical)
	return nil
}

// Result is silent
func (f *SummaryFormatter) Result(models.OperationResult) error {
	return nil
}

// Summary prints the totals on one line
func (f *SummaryFormatter) Summary(s models.Summary, elapsed time.Duration) error {
	fmt.Fprintf(f.writer, "%d succeeded, %d failed, %d skipped, %s transferred in %s\n",
		s.Succeeded, s.Failed, s.Skipped, humanize.Bytes(uint64(s.BytesTransferred)), elapsed.Round(time.Millisecond))
	return nil
}

// Name returns the formatter name
func (f *SummaryFormatter) Name() string {
	return FormatSummary
}
