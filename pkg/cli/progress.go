package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress of a long-running command such as an
// evidence export.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// barWidth is the number of cells in the progress bar.
const barWidth = 30

// SimpleProgress redraws a single status line:
//
//	 42.0% [============>                 ] 420/1000 records, 812.5/s
//
// The line is redrawn only when the whole-number percentage changes.
type SimpleProgress struct {
	mu      sync.Mutex
	w       io.Writer
	unit    string
	total   int64
	current int64
	drawn   int // last drawn percentage, -1 before the first draw
	started time.Time
}

// NewProgressReporter creates a reporter counting unit (e.g. "records") on w.
// A nil w means stderr, keeping progress out of command output.
func NewProgressReporter(w io.Writer, unit string) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	if unit == "" {
		unit = "items"
	}
	return &SimpleProgress{w: w, unit: unit, drawn: -1}
}

func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.drawn = -1
	p.started = time.Now()
	p.draw(false)
}

func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(current, p.total)
	p.draw(false)
}

// Finish draws the completed line and ends it.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.draw(true)
	fmt.Fprintln(p.w)
}

func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\nError: %v\n", err)
}

// draw writes the status line. Caller must hold lock.
func (p *SimpleProgress) draw(force bool) {
	if p.total <= 0 {
		return
	}
	percent := float64(p.current) * 100 / float64(p.total)
	if !force && int(percent) == p.drawn {
		return
	}
	p.drawn = int(percent)

	filled := int(p.current * barWidth / p.total)
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	var rate float64
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	fmt.Fprintf(p.w, "\r%5.1f%% [%s] %d/%d %s, %.1f/s", percent, bar, p.current, p.total, p.unit, rate)
}
