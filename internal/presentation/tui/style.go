package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Printer writes styled console messages.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a Printer. Styling is dropped when w is not a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w)}
}

// System prints an engine message, prefixed with ">>>".
func (p *Printer) System(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(">>> "+fmt.Sprintf(format, args...)).Bold())
}

// Change prints a state change.
func (p *Printer) Change(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String("  ~ "+fmt.Sprintf(format, args...)).Foreground(p.out.Color("#22d3ee")))
}

// Success prints a positive outcome.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#4ade80")))
}

// Warning prints a non-fatal problem.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#facc15")))
}

// Error prints a failure.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color("#f87171")))
}

// Trace prints a low-priority line.
func (p *Printer) Trace(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String("  · "+fmt.Sprintf(format, args...)).Faint())
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Prompt prints the input prompt without a newline.
func (p *Printer) Prompt() {
	fmt.Fprint(p.w, p.out.String("> ").Bold())
}
