package timing

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Reporter prints progress and timing lines for a session.
type Reporter struct {
	out    io.Writer
	now    func() time.Time
	header lipgloss.Style
	failed lipgloss.Style
}

// NewReporter creates a reporter writing to w. Styling degrades to plain text when w is
// not a terminal.
func NewReporter(w io.Writer) *Reporter {
	return NewReporterWithClock(w, time.Now)
}

// NewReporterWithClock creates a reporter with an injectable clock.
func NewReporterWithClock(w io.Writer, now func() time.Time) *Reporter {
	renderer := lipgloss.NewRenderer(w)
	return &Reporter{
		out:    w,
		now:    now,
		header: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		failed: renderer.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Start begins a measurement with the reporter's clock.
func (r *Reporter) Start(label string) Stopwatch {
	return StartWith(label, r.now)
}

// Progress prints the "Rendering i/n" line for an iteration.
func (r *Reporter) Progress(index, total int) {
	fmt.Fprintln(r.out, r.header.Render(fmt.Sprintf("Rendering %d/%d", index, total)))
}

// Stop prints "<label>: <duration>" for sw and returns the elapsed time.
// A failed measurement is marked as such.
func (r *Reporter) Stop(sw Stopwatch, failed bool) time.Duration {
	elapsed := sw.Elapsed()
	line := fmt.Sprintf("%s: %s", sw.Label, FormatDuration(elapsed))
	if failed {
		line += " " + r.failed.Render("(failed)")
	}
	fmt.Fprintln(r.out, line)
	return elapsed
}

// Separator prints the blank line between iterations.
func (r *Reporter) Separator() {
	fmt.Fprintln(r.out)
}
