package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const progressBarWidth = 30

// ProgressReporter reports progress through a batch of layer exports.
type ProgressReporter interface {
	// Start resets the reporter for total layers.
	Start(total int)
	// Done marks layer as exported.
	Done(layer string)
	// Failed marks layer as failed with err.
	Failed(layer string, err error)
	// Finish ends the bar.
	Finish()
}

// LayerProgress draws a single-line bar for "strwriter export --all".
type LayerProgress struct {
	mu     sync.Mutex
	total  int
	done   int
	failed int
	last   string
	writer io.Writer
}

// NewProgressReporter creates a reporter that writes to w, or to os.Stderr
// when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &LayerProgress{writer: w}
}

// Start implements ProgressReporter.
func (p *LayerProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done, p.failed, p.last = 0, 0, ""
	p.render()
}

// Done implements ProgressReporter.
func (p *LayerProgress) Done(layer string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.last = layer
	p.render()
}

// Failed implements ProgressReporter. The failure is printed on its own line
// and the bar redrawn below it.
func (p *LayerProgress) Failed(layer string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed++
	p.last = layer
	fmt.Fprintf(p.writer, "\r\033[K✗ %s: %v\n", layer, err)
	p.render()
}

// Finish implements ProgressReporter.
func (p *LayerProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total == 0 {
		return
	}
	fmt.Fprintln(p.writer)
}

func (p *LayerProgress) render() {
	if p.total == 0 {
		return
	}

	n := p.done + p.failed
	if n > p.total {
		n = p.total
	}
	filled := progressBarWidth * n / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	fmt.Fprintf(p.writer, "\rExporting [%s] %d/%d layers", bar, n, p.total)
	if p.failed > 0 {
		fmt.Fprintf(p.writer, " (%d failed)", p.failed)
	}
	if p.last != "" {
		fmt.Fprintf(p.writer, " %s", p.last)
	}
}
