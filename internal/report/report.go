// Package report writes a YAML summary of a render session.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Run is the record of one iteration.
type Run struct {
	Index          int    `yaml:"index"`
	Output         string `yaml:"output"`
	Duration       string `yaml:"duration"`
	DurationMillis int64  `yaml:"duration_ms"`
	ExitCode       int    `yaml:"exit_code"`
	Succeeded      bool   `yaml:"succeeded"`
}

// Session is the record of a whole invocation.
type Session struct {
	SessionID   string    `yaml:"session_id"`
	Example     string    `yaml:"example"`
	Count       int       `yaml:"count"`
	Timestamp   string    `yaml:"timestamp,omitempty"`
	StartedAt   time.Time `yaml:"started_at"`
	Total       string    `yaml:"total"`
	TotalMillis int64     `yaml:"total_ms"`
	Failed      bool      `yaml:"failed"`
	Error       string    `yaml:"error,omitempty"`
	Runs        []Run     `yaml:"runs"`
}

// NewSession starts a report with a fresh session id.
func NewSession(example string, count int, startedAt time.Time) *Session {
	return &Session{
		SessionID: uuid.New().String(),
		Example:   example,
		Count:     count,
		StartedAt: startedAt,
		Runs:      make([]Run, 0, count),
	}
}

// AddRun appends an iteration record.
func (s *Session) AddRun(index int, output string, duration time.Duration, exitCode int) {
	s.Runs = append(s.Runs, Run{
		Index:          index,
		Output:         output,
		Duration:       duration.Round(time.Millisecond).String(),
		DurationMillis: duration.Milliseconds(),
		ExitCode:       exitCode,
		Succeeded:      exitCode == 0,
	})
}

// Finish records the total duration and the error that ended the session, if any.
func (s *Session) Finish(total time.Duration, err error) {
	s.Total = total.Round(time.Millisecond).String()
	s.TotalMillis = total.Milliseconds()
	if err != nil {
		s.Failed = true
		s.Error = err.Error()
	}
}

// Write encodes the session as YAML at path, creating parent directories.
func Write(path string, s *Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
