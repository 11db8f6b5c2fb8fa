// Package diag carries the diagnostic model of the Aster front end:
// severity levels, the diagnostic value, and the sink interface the parser
// reports through. Errors abort a parse; warnings accumulate.
package diag

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"

	"github.com/orizon-lang/aster/internal/source"
)

// Severity represents the severity level of a diagnostic message.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message attached to a source span.
type Diagnostic struct {
	Severity Severity
	Span     source.Span
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Span, d.Message)
}

// Error makes a Diagnostic usable as an error value.
func (d Diagnostic) Error() string { return d.String() }

// Sink consumes diagnostics as the parser produces them.
type Sink interface {
	Report(d Diagnostic)
}

// Collector is a Sink that accumulates diagnostics in order.
type Collector struct {
	mu   sync.Mutex
	list []Diagnostic
}

// Report appends d to the collector.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, d)
}

// All returns the collected diagnostics sorted by source offset.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.list))
	copy(out, c.list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Offset < out[j].Span.Start.Offset
	})
	return out
}

// Errors returns only the error-severity diagnostics.
func (c *Collector) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.All() {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Reset drops all collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
}

// Console is a Sink that renders diagnostics to a writer with severity
// coloring.
type Console struct {
	Out io.Writer
}

var severityColors = map[Severity]*color.Color{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow),
	Info:    color.New(color.FgCyan),
	Hint:    color.New(color.Faint),
}

// Report writes d to the console.
func (c *Console) Report(d Diagnostic) {
	paint := severityColors[d.Severity]
	if paint == nil {
		paint = color.New()
	}
	fmt.Fprintf(c.Out, "%s: %s: %s\n", paint.Sprint(d.Severity.String()), d.Span, d.Message)
}

// Tee fans a diagnostic out to several sinks.
type Tee []Sink

func (t Tee) Report(d Diagnostic) {
	for _, s := range t {
		s.Report(d)
	}
}

// Bailout is the panic payload used to abort a parse after an error has been
// reported. Entry points recover it and return the underlying diagnostic.
type Bailout struct {
	Diagnostic Diagnostic
}
