package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Notifier prints the single success or failure line an export ends with.
type Notifier struct {
	out     io.Writer
	errOut  io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	plain   bool
}

// NewNotifier writes successes to out and failures to errOut. A nil writer
// defaults to os.Stdout or os.Stderr.
func NewNotifier(out, errOut io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Notifier{
		out:     out,
		errOut:  errOut,
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F43F5E")),
	}
}

// Plain disables styling, e.g. when output is not a terminal.
func (n *Notifier) Plain() *Notifier {
	n.plain = true
	return n
}

// Success prints msg with a check mark.
func (n *Notifier) Success(msg string) {
	fmt.Fprintln(n.out, n.render(n.success, "✓ "+msg))
}

// Failure prints err with a cross. Silent errors print nothing.
func (n *Notifier) Failure(err error) {
	if err == nil || IsSilent(err) {
		return
	}
	fmt.Fprintln(n.errOut, n.render(n.failure, "✗ "+err.Error()))
}

func (n *Notifier) render(style lipgloss.Style, s string) string {
	if n.plain {
		return s
	}
	return style.Render(s)
}
