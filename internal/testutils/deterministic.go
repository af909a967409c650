// Package testutils provides deterministic clocks, a recording process runner and
// filesystem helpers for renderloop tests.
package testutils

import (
	"sync"
	"time"
)

// DeterministicClock returns a start time that advances by Step on every reading.
type DeterministicClock struct {
	Step time.Duration

	mu      sync.Mutex
	current time.Time
}

// NewDeterministicClock creates a clock starting at start.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{Step: step, current: start}
}

// DefaultClock starts at 2025-01-01T00:00:00 local time and ticks one second per reading.
func DefaultClock() *DeterministicClock {
	return NewDeterministicClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), time.Second)
}

// Now returns the current reading and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.current
	c.current = c.current.Add(c.Step)
	return t
}
