package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress while a batch of modules is certified
// or validated.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const progressBarWidth = 30

// textProgress renders a single-line bar, redrawn in place with a carriage
// return. Callers that also print per-module lines should buffer them until
// Finish.
type textProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter writing to w, or to
// standard output when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &textProgress{writer: w}
}

// Start begins a run over total modules.
func (p *textProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

// Update sets the number of modules processed so far.
func (p *textProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish completes the bar and terminates the line.
func (p *textProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total <= 0 {
		return
	}
	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error interrupts the bar with an error line.
func (p *textProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ %v\n", err)
}

func (p *textProgress) render() {
	if p.total <= 0 {
		return
	}

	filled := int(float64(progressBarWidth) * float64(p.current) / float64(p.total))
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	var rate float64
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.writer, "\rProgress: [%s] (%d/%d) %.1f modules/s",
		bar, p.current, p.total, rate)
}
