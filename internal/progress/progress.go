// Package progress implements a dependency-free, rate-limited terminal
// status line, grounded on (and a large simplification of) the teacher's
// internal/state.TerminalUI.
package progress

import (
	"fmt"
	"os"
)

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
	clearLine  = "\033[K"
)

// Reporter prints a single carriage-return-updated status line, enabled
// only when stdout is an interactive terminal.
type Reporter struct {
	enabled bool
	out     *os.File
}

// New builds a Reporter targeting out, auto-disabling itself when out is
// not a character device (i.e. not a terminal) — there is no
// golang.org/x/term in the dependency pack, so the check uses the
// ModeCharDevice bit from the file's own Stat instead.
func New(out *os.File) *Reporter {
	enabled := false
	if info, err := out.Stat(); err == nil {
		enabled = (info.Mode() & os.ModeCharDevice) != 0
	}
	return &Reporter{enabled: enabled, out: out}
}

// ShouldPrint implements spec.md §4.I's tiered progress-print frequency:
// 1/1 below 10 iterations, 1/10 below 100, 1/100 below 1000, 1/500 beyond.
func ShouldPrint(iter int) bool {
	switch {
	case iter < 10:
		return true
	case iter < 100:
		return iter%10 == 0
	case iter < 1000:
		return iter%100 == 0
	default:
		return iter%500 == 0
	}
}

// Status is one snapshot of fuzzing progress.
type Status struct {
	Iteration    int
	Phase        string
	Signatures   int
	Retained     int
	LastCoverage float64
}

// Print renders s to the status line if printing is enabled and
// warranted by ShouldPrint.
func (r *Reporter) Print(s Status) {
	if !r.enabled || !ShouldPrint(s.Iteration) {
		return
	}
	fmt.Fprintf(r.out, "\r%s%s[iter %d]%s %sphase=%s sigs=%d retained=%d cov=%.1f%%%s",
		clearLine, colorBold, s.Iteration, colorReset, colorCyan,
		s.Phase, s.Signatures, s.Retained, s.LastCoverage, colorReset)
}

// Done prints a final newline so the next log line does not overwrite the
// last status render.
func (r *Reporter) Done() {
	if !r.enabled {
		return
	}
	fmt.Fprintln(r.out)
}
