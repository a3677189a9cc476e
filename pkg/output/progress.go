package output

import (
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/treesync/pkg/models"
)

const (
	defaultWidth = 120
	barTemplate  = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . "%s/s" ""}} {{rtime . "ETA %s"}}`
)

// getUpdateInterval returns the progress refresh interval based on OS
// Windows terminals have higher latency with ANSI sequences
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	_, ok := terminalWidth(w)
	return ok
}

func terminalWidth(w io.Writer) (int, bool) {
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return width, true
		}
	}
	return defaultWidth, false
}

// ProgressBar renders the bytes copied by a sync. Its Update method is an
// executor progress callback.
type ProgressBar struct {
	bar     *pb.ProgressBar
	started bool

	mu      sync.Mutex
	written map[string]int64 // destination -> bytes reported so far
}

// NewProgressBar creates a byte counter over totalBytes
func NewProgressBar(w io.Writer, totalBytes int64) *ProgressBar {
	width, _ := terminalWidth(w)

	bar := pb.New64(totalBytes)
	bar.SetWriter(w)
	bar.SetTemplateString(barTemplate)
	bar.SetRefreshRate(getUpdateInterval())
	bar.SetWidth(width)
	bar.Set(pb.Bytes, true)

	return &ProgressBar{bar: bar, written: make(map[string]int64)}
}

// SetTotal changes the expected byte count
func (p *ProgressBar) SetTotal(total int64) {
	p.bar.SetTotal(total)
}

// Start begins rendering
func (p *ProgressBar) Start() {
	p.started = true
	p.bar.Start()
}

// Update records the cumulative bytes written for op
func (p *ProgressBar) Update(op models.FileOperation, written, total int64) {
	p.mu.Lock()
	delta := written - p.written[op.DestinationPath]
	p.written[op.DestinationPath] = written
	p.mu.Unlock()

	if delta > 0 {
		p.bar.Add64(delta)
	}
}

// Current returns the bytes counted so far
func (p *ProgressBar) Current() int64 {
	return p.bar.Current()
}

// Finish stops rendering. A bar that never started prints nothing.
func (p *ProgressBar) Finish() {
	if p.started {
		p.bar.Finish()
	}
}
