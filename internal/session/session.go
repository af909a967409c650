// Package session drives the render loop: plan a path, run the renderer into it, report timing.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"renderloop/internal/config"
	"renderloop/internal/logger"
	"renderloop/internal/planner"
	"renderloop/internal/process"
	"renderloop/internal/report"
	"renderloop/internal/timing"
)

// ErrRenderFailed is wrapped by the error returned when the renderer exits non-zero.
var ErrRenderFailed = errors.New("render failed")

// RunResult describes one finished iteration.
type RunResult struct {
	Index      int
	OutputPath string
	Duration   time.Duration
	ExitCode   int
	Succeeded  bool
}

// Options holds the collaborators of a session.
type Options struct {
	// Runner executes the renderer. Defaults to a process.ExecRunner.
	Runner process.Runner

	// Out receives progress and timing lines. Defaults to os.Stdout.
	Out io.Writer

	// Now is the wall clock. Defaults to time.Now.
	Now func() time.Time
}

// Session runs a configured number of renders, one after another.
type Session struct {
	cfg      *config.Config
	runner   process.Runner
	reporter *timing.Reporter
	now      func() time.Time
	log      *log.Logger
}

// New creates a session for cfg.
func New(cfg *config.Config, opts Options) *Session {
	if opts.Runner == nil {
		opts.Runner = process.NewExecRunner()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		cfg:      cfg,
		runner:   opts.Runner,
		reporter: timing.NewReporterWithClock(opts.Out, opts.Now),
		now:      opts.Now,
		log:      logger.NewStyledLogger("session"),
	}
}

// Run executes every iteration in order and stops at the first failure.
// The total time is reported even when an iteration fails.
func (s *Session) Run(ctx context.Context) ([]RunResult, error) {
	started := s.now()
	plan := planner.New(s.cfg, started)
	if err := plan.Prepare(); err != nil {
		return nil, err
	}

	s.log.Debug("session planned", "example", s.cfg.ExampleName, "count", s.cfg.Count,
		"dir", plan.Dir(), "timestamp", plan.Timestamp())

	var rep *report.Session
	if s.cfg.ReportPath != "" {
		rep = report.NewSession(s.cfg.ExampleName, s.cfg.Count, started)
		if s.cfg.IncludeTimestamp {
			rep.Timestamp = plan.Timestamp()
		}
	}

	total := s.reporter.Start(timing.TotalLabel)
	results := make([]RunResult, 0, s.cfg.Count)

	var runErr error
	for i := 1; i <= s.cfg.Count; i++ {
		job := plan.Plan(i)
		result, err := s.iterate(ctx, job, i)
		results = append(results, result)
		if rep != nil {
			rep.AddRun(job.Index, job.OutputPath, result.Duration, result.ExitCode)
		}
		if err != nil {
			runErr = err
			break
		}
	}

	elapsed := s.reporter.Stop(total, runErr != nil)

	if rep != nil {
		rep.Finish(elapsed, runErr)
		if err := report.Write(s.cfg.ReportPath, rep); err != nil {
			if runErr != nil {
				s.log.Warn("could not write session report", "error", err)
			} else {
				runErr = err
			}
		}
	}

	return results, runErr
}

// iterate wraps a single run in progress and timing output when the session has
// more than one iteration.
func (s *Session) iterate(ctx context.Context, job planner.RenderJob, index int) (RunResult, error) {
	batch := s.cfg.Count > 1
	if batch {
		s.reporter.Progress(index, s.cfg.Count)
	}

	sw := s.reporter.Start(timing.IterationLabel(index))
	result, err := s.execute(ctx, job)

	if batch {
		result.Duration = s.reporter.Stop(sw, err != nil)
		s.reporter.Separator()
	} else {
		result.Duration = sw.Elapsed()
	}

	return result, err
}

// execute runs the renderer once with stdout redirected to the job's output file.
// The file is closed before returning, whatever the outcome.
func (s *Session) execute(ctx context.Context, job planner.RenderJob) (result RunResult, err error) {
	result = RunResult{Index: job.Index, OutputPath: job.OutputPath, ExitCode: -1}

	f, err := os.Create(job.OutputPath)
	if err != nil {
		return result, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			result.Succeeded = false
			err = fmt.Errorf("failed to close output file %s: %w", job.OutputPath, closeErr)
		}
	}()

	cmd := process.CargoExample(s.cfg.Cargo, job.ExampleName)
	s.log.Debug("starting render", "iteration", job.Index, "command", cmd.String(), "output", job.OutputPath)

	res, err := s.runner.Run(ctx, cmd, f)
	result.ExitCode = res.ExitCode
	if err != nil {
		return result, fmt.Errorf("render %d: %w", job.Index, err)
	}

	s.log.Debug("render finished", "iteration", job.Index, "exit_code", res.ExitCode, "duration", res.Duration)

	if !res.Succeeded() {
		return result, fmt.Errorf("%w: %s exited with status %d", ErrRenderFailed, cmd, res.ExitCode)
	}

	result.Succeeded = true
	return result, nil
}
