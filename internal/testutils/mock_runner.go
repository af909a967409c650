package testutils

import (
	"context"
	"io"
	"sync"
	"time"

	"renderloop/internal/process"
)

// Invocation is one recorded call to MockRunner.Run.
type Invocation struct {
	Command process.Command
}

// MockRunner is a process.Runner that records invocations instead of spawning processes.
// Each call writes Output to the stdout sink and returns ExitCodes[n] (0 when unset).
type MockRunner struct {
	Output    string
	ExitCodes map[int]int
	Errors    map[int]error
	Duration  time.Duration

	mu          sync.Mutex
	invocations []Invocation
}

// NewMockRunner creates a runner that succeeds and writes output on every call.
func NewMockRunner(output string) *MockRunner {
	return &MockRunner{
		Output:    output,
		ExitCodes: make(map[int]int),
		Errors:    make(map[int]error),
		Duration:  time.Millisecond,
	}
}

// FailOn makes the n-th call (1-based) exit with code.
func (m *MockRunner) FailOn(call, code int) *MockRunner {
	m.ExitCodes[call] = code
	return m
}

// ErrorOn makes the n-th call (1-based) fail to start with err.
func (m *MockRunner) ErrorOn(call int, err error) *MockRunner {
	m.Errors[call] = err
	return m
}

// Run implements process.Runner.
func (m *MockRunner) Run(_ context.Context, cmd process.Command, stdout io.Writer) (process.Result, error) {
	m.mu.Lock()
	m.invocations = append(m.invocations, Invocation{Command: cmd})
	call := len(m.invocations)
	m.mu.Unlock()

	if err, ok := m.Errors[call]; ok {
		return process.Result{ExitCode: -1}, err
	}

	if _, err := io.WriteString(stdout, m.Output); err != nil {
		return process.Result{ExitCode: -1}, err
	}

	return process.Result{ExitCode: m.ExitCodes[call], Duration: m.Duration}, nil
}

// Invocations returns a copy of the recorded calls.
func (m *MockRunner) Invocations() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Invocation, len(m.invocations))
	copy(out, m.invocations)
	return out
}

// Calls returns the number of recorded calls.
func (m *MockRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invocations)
}
