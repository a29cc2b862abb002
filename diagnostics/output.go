package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// OutputFormatter renders events as human-readable lines, color-coding
// when the destination looks like a terminal.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter builds a formatter writing to w (stdout if nil),
// auto-detecting color support.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements Handler by formatting and printing event.
func (f *OutputFormatter) Handle(event Event) {
	if line := f.Format(event); line != "" {
		fmt.Fprintln(f.writer, line)
	}
}

// Format renders one event as a single line, or "" for events that are
// only useful for aggregate inspection (e.g. per-advance join detail).
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event)

	switch event.Name {
	case QueryInvoked:
		return fmt.Sprintf("%s query: %s", latency, truncate(str(event, "query"), 80))

	case QueryCompiled:
		return fmt.Sprintf("%s compiled %s into %s", latency,
			f.colorize("query", color.FgBlue), f.colorizeCount("stage", intOf(event, "stages")))

	case QueryCompleted:
		if !boolOf(event, "success") {
			return fmt.Sprintf("%s %s query failed: %v", latency, f.colorize("x", color.FgRed), event.Data["error"])
		}
		return fmt.Sprintf("%s %s done with %s", latency, f.colorize("=>", color.FgGreen),
			f.colorizeCount("row", intOf(event, "rows")))

	case TypeInferSeeded:
		return fmt.Sprintf("%s seeded %s across %s", latency,
			f.colorizeCount("variable", intOf(event, "variables")), f.colorizeCount("scope", intOf(event, "scopes")))

	case TypeInferIteration:
		return fmt.Sprintf("%s fixed-point iteration %d: %s changed", latency,
			intOf(event, "iteration"), f.colorizeCount("annotation", intOf(event, "changed")))

	case TypeInferConverged:
		return fmt.Sprintf("%s converged after %d iterations", latency, intOf(event, "iteration"))

	case TypeInferPruned:
		return fmt.Sprintf("%s pruned %s with empty candidate sets", latency, f.colorizeCount("variable", intOf(event, "pruned")))

	case PlanCreated:
		return fmt.Sprintf("\n%s\n", str(event, "plan"))

	case PlanStepChosen:
		return fmt.Sprintf("%s chose %s %s (cost %.1f)", latency,
			str(event, "constraint"), str(event, "direction"), floatOf(event, "cost"))

	case PhaseBegin:
		return fmt.Sprintf("%s %s %s starting", latency, f.colorize("===", color.FgYellow), str(event, "phase"))

	case PhaseComplete:
		return fmt.Sprintf("%s %s completed with %s", latency, str(event, "phase"), f.colorizeCount("row", intOf(event, "rows")))

	case IntersectionAdvance:
		return ""

	case IntersectionCartesian:
		return fmt.Sprintf("%s merged %d sub-iterators into %s", latency,
			intOf(event, "groups"), f.colorizeCount("row", intOf(event, "rows")))

	case DisjunctionBranch:
		return fmt.Sprintf("%s branch %d produced %s", latency, intOf(event, "branch"), f.colorizeCount("row", intOf(event, "rows")))

	case WriteInsert:
		return fmt.Sprintf("%s inserted %d write(s) across %s", latency,
			intOf(event, "constraint"), f.colorizeCount("row", intOf(event, "rows")))

	case WriteDelete:
		return fmt.Sprintf("%s deleted %d write(s) across %s", latency,
			intOf(event, "constraint"), f.colorizeCount("row", intOf(event, "rows")))

	case ErrorCompile, ErrorRead, ErrorWrite:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("error", color.FgRed), event.Data["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

func (f *OutputFormatter) formatLatency(event Event) string {
	d := event.Latency
	if d <= 0 {
		return "[---]"
	}
	var s string
	if d.Microseconds() < 1000 {
		s = fmt.Sprintf("[%dus]", d.Microseconds())
	} else {
		s = fmt.Sprintf("[%.1fms]", float64(d.Microseconds())/1000.0)
	}
	if !f.useColor {
		return s
	}
	switch {
	case d.Milliseconds() < 50:
		return color.GreenString(s)
	case d.Milliseconds() < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func (f *OutputFormatter) colorizeCount(label string, count int) string {
	plural := label
	if count != 1 {
		plural = label + "s"
	}
	text := fmt.Sprintf("%d %s", count, plural)
	if !f.useColor {
		return text
	}
	switch {
	case count == 0:
		return color.RedString(text)
	case count < 100:
		return color.GreenString(text)
	case count < 10000:
		return color.YellowString(text)
	default:
		return color.CyanString(text)
	}
}

func (f *OutputFormatter) colorize(text string, attr color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attr).Sprint(text)
}

func str(e Event, key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

func intOf(e Event, key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func floatOf(e Event, key string) float64 {
	if v, ok := e.Data[key].(float64); ok {
		return v
	}
	return 0
}

func boolOf(e Event, key string) bool {
	if v, ok := e.Data[key].(bool); ok {
		return v
	}
	return false
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ConsoleHandler returns a Handler that prints formatted events to stdout.
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stdout)
	return formatter.Handle
}

// isTerminal is a minimal stdout/stderr check; a full implementation
// would use golang.org/x/term.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2)
}
