// Package process runs external commands with their stdout redirected to a sink.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"renderloop/internal/logger"
)

// Command is an argv-style invocation. No shell is involved.
type Command struct {
	Name string
	Args []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CargoExample returns the optimized build-and-run command for a named example.
func CargoExample(cargo, example string) Command {
	return Command{
		Name: cargo,
		Args: []string{"run", "--release", "--example", example},
	}
}

// Result describes a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Succeeded reports whether the process exited with status zero.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner executes a command to completion, writing its stdout to the sink.
// A non-zero exit is reported through Result, not as an error; errors mean the
// command could not be run at all.
type Runner interface {
	Run(ctx context.Context, cmd Command, stdout io.Writer) (Result, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Stderr receives the child's stderr. Defaults to os.Stderr.
	Stderr io.Writer

	// Dir is the child's working directory. Empty means the current one.
	Dir string
}

// NewExecRunner creates a runner that passes the child's stderr through to ours.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, command Command, stdout io.Writer) (Result, error) {
	if command.Name == "" {
		return Result{ExitCode: -1}, fmt.Errorf("command is required")
	}

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = r.Dir
	cmd.Env = os.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logger.CommandExecution(command.Name, command.Args)

	start := time.Now()
	err := cmd.Run()
	result := Result{Duration: time.Since(start)}

	if err != nil {
		if ctx.Err() != nil {
			result.ExitCode = -1
			return result, ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}

		result.ExitCode = -1
		return result, fmt.Errorf("failed to run %s: %w", command.Name, err)
	}

	return result, nil
}
