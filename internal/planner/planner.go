// Package planner decides where each run's output lands.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"renderloop/internal/config"
)

const (
	// TimestampLayout is ISO-8601 truncated to seconds with colons replaced by hyphens.
	TimestampLayout = "2006-01-02T15-04-05"

	// Extension of every output file; the renderer writes PPM images to stdout.
	Extension = ".ppm"

	singleRunName = "output"
	indexWidth    = 3
)

// RenderJob is one planned run of the renderer.
type RenderJob struct {
	ExampleName string

	// Index is the 1-based iteration number, or 0 for a single-run session.
	Index int

	OutputPath string
}

// Planner computes output paths for a session. The timestamp is fixed at construction
// so every file of a batch shares it.
type Planner struct {
	exampleName      string
	dir              string
	count            int
	includeTimestamp bool
	timestamp        string
}

// New creates a planner for cfg. sessionStart is formatted once, in its own location.
func New(cfg *config.Config, sessionStart time.Time) *Planner {
	return &Planner{
		exampleName:      cfg.ExampleName,
		dir:              filepath.Join(cfg.OutputRoot, cfg.ExampleName),
		count:            cfg.Count,
		includeTimestamp: cfg.IncludeTimestamp,
		timestamp:        FormatTimestamp(sessionStart),
	}
}

// FormatTimestamp renders t with TimestampLayout, dropping fractional seconds.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Dir returns the session's output directory.
func (p *Planner) Dir() string {
	return p.dir
}

// Timestamp returns the shared session timestamp.
func (p *Planner) Timestamp() string {
	return p.timestamp
}

// Prepare creates the output directory and any missing parents.
func (p *Planner) Prepare() error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.dir, err)
	}
	return nil
}

// FileName returns the output file name for the 1-based iteration index.
func (p *Planner) FileName(index int) string {
	if p.count == 1 {
		if p.includeTimestamp {
			return p.timestamp + Extension
		}
		return singleRunName + Extension
	}

	padded := fmt.Sprintf("%0*d", indexWidth, index)
	if p.includeTimestamp {
		return p.timestamp + "-" + padded + Extension
	}
	return padded + Extension
}

// Plan returns the job for the 1-based iteration index.
func (p *Planner) Plan(index int) RenderJob {
	job := RenderJob{
		ExampleName: p.exampleName,
		OutputPath:  filepath.Join(p.dir, p.FileName(index)),
	}
	if p.count > 1 {
		job.Index = index
	}
	return job
}
