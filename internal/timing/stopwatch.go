// Package timing measures wall-clock durations of runs and sessions.
package timing

import (
	"fmt"
	"time"
)

// Labels printed by the reporter.
const (
	TotalLabel = "Render total"
)

// IterationLabel returns the label for the 1-based iteration index.
func IterationLabel(index int) string {
	return fmt.Sprintf("Execution time %d", index)
}

// Stopwatch is a started measurement. It is a plain value: whoever starts it owns it,
// so two sessions or iterations can never share a label.
type Stopwatch struct {
	Label string
	start time.Time
	now   func() time.Time
}

// Start begins a measurement using the wall clock.
func Start(label string) Stopwatch {
	return StartWith(label, time.Now)
}

// StartWith begins a measurement using the given clock.
func StartWith(label string, now func() time.Time) Stopwatch {
	return Stopwatch{Label: label, start: now(), now: now}
}

// Started returns when the measurement began.
func (s Stopwatch) Started() time.Time {
	return s.start
}

// Elapsed returns the time since Start.
func (s Stopwatch) Elapsed() time.Duration {
	return s.now().Sub(s.start)
}

// FormatDuration rounds d to milliseconds for display.
func FormatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
