package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renderloop/internal/logger"
	"renderloop/internal/process"
	"renderloop/internal/testutils"
)

type harness struct {
	app    *App
	runner *testutils.MockRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	dir    string
}

// newHarness runs the app inside a fresh working directory with a recording runner.
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	h := &harness{
		runner: testutils.NewMockRunner(testutils.PPMStub),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		dir:    dir,
	}
	h.app = NewApp()
	h.app.Runner = h.runner
	h.app.Stdout = h.stdout
	h.app.Stderr = h.stderr
	h.app.Now = testutils.DefaultClock().Now
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return h
}

func (h *harness) execute(args ...string) int {
	return h.app.Execute(context.Background(), args)
}

func TestHelp(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		t.Run(flag, func(t *testing.T) {
			h := newHarness(t)

			code := h.execute(flag)

			assert.Equal(t, 0, code)
			assert.Contains(t, h.stdout.String(), "Usage:")
			assert.Contains(t, h.stdout.String(), "--count")
			assert.Contains(t, h.stdout.String(), "--timestamp")
			assert.Equal(t, 0, h.runner.Calls())
			testutils.AssertNotExists(t, filepath.Join(h.dir, "out"))
		})
	}
}

func TestHelpWithExampleDoesNotRun(t *testing.T) {
	h := newHarness(t)

	code := h.execute("-h", "-n", "3", "scene1")

	assert.Equal(t, 0, code)
	assert.Equal(t, 0, h.runner.Calls())
	testutils.AssertNotExists(t, filepath.Join(h.dir, "out"))
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"missing positional", nil, "expected exactly one example name argument"},
		{"two positionals", []string{"scene1", "scene2"}, "expected exactly one example name argument"},
		{"zero count", []string{"-n", "0", "scene1"}, "count must be a positive integer"},
		{"negative count", []string{"--count=-3", "scene1"}, "count must be a positive integer"},
		{"non numeric count", []string{"--count", "abc", "scene1"}, "count must be a positive integer"},
		{"unknown flag", []string{"--parallel", "scene1"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			code := h.execute(tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stderr.String(), tt.message)
			assert.Contains(t, h.stderr.String(), "Usage:")
			assert.Equal(t, 0, h.runner.Calls())
			testutils.AssertNotExists(t, filepath.Join(h.dir, "out"))
		})
	}
}

func TestSingleRun(t *testing.T) {
	h := newHarness(t)

	code := h.execute("scene1")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"output.ppm"}, testutils.ListFiles(t, filepath.Join(h.dir, "out", "scene1")))
	assert.Contains(t, h.stdout.String(), "Render total: ")
	assert.NotContains(t, h.stdout.String(), "Rendering")

	invocations := h.runner.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, process.CargoExample("cargo", "scene1"), invocations[0].Command)
}

func TestBatchWithTimestamp(t *testing.T) {
	h := newHarness(t)

	code := h.execute("-n", "5", "-t", "scene2")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{
		"2025-01-01T00-00-00-001.ppm",
		"2025-01-01T00-00-00-002.ppm",
		"2025-01-01T00-00-00-003.ppm",
		"2025-01-01T00-00-00-004.ppm",
		"2025-01-01T00-00-00-005.ppm",
	}, testutils.ListFiles(t, filepath.Join(h.dir, "out", "scene2")))
	assert.Contains(t, h.stdout.String(), "Rendering 5/5")
}

func TestCustomOutDirAndCargo(t *testing.T) {
	h := newHarness(t)

	code := h.execute("--out-dir", "renders", "--cargo", "/usr/local/bin/cargo", "--count", "2", "scene3")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"001.ppm", "002.ppm"}, testutils.ListFiles(t, filepath.Join(h.dir, "renders", "scene3")))
	for _, inv := range h.runner.Invocations() {
		assert.Equal(t, "/usr/local/bin/cargo", inv.Command.Name)
	}
}

func TestRenderFailureExitsWithoutUsage(t *testing.T) {
	h := newHarness(t)
	h.runner.FailOn(2, 101)

	code := h.execute("-n", "4", "scene1")

	assert.Equal(t, 1, code)
	assert.Equal(t, 2, h.runner.Calls())
	assert.NotContains(t, h.stderr.String(), "Usage:")
	assert.Contains(t, h.stderr.String(), "render failed")
	assert.NotContains(t, h.stdout.String(), "Rendering 3/4")
	assert.Contains(t, h.stdout.String(), "Render total: ")
}

func TestCountFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("RENDERLOOP_COUNT", "2")

	code := h.execute("scene1")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"001.ppm", "002.ppm"}, testutils.ListFiles(t, filepath.Join(h.dir, "out", "scene1")))
}

func TestFlagOverridesEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("RENDERLOOP_COUNT", "4")

	code := h.execute("-n", "1", "scene1")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, 1, h.runner.Calls())
}

func TestDotEnvFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".env"), []byte("RENDERLOOP_OUT_DIR=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("RENDERLOOP_OUT_DIR") })

	code := h.execute("scene1")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"output.ppm"}, testutils.ListFiles(t, filepath.Join(h.dir, "from-dotenv", "scene1")))
}

func TestReportFlag(t *testing.T) {
	h := newHarness(t)

	code := h.execute("-n", "2", "--report", "reports/session.yaml", "scene1")

	require.Equal(t, 0, code, h.stderr.String())
	data, err := os.ReadFile(filepath.Join(h.dir, "reports", "session.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "example: scene1")
	assert.Contains(t, string(data), "count: 2")
	assert.Len(t, testutils.ListFiles(t, filepath.Join(h.dir, "out", "scene1")), 2)
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t)

	code := h.execute("--version")

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "renderloop version v")
	assert.Equal(t, 0, h.runner.Calls())
}
