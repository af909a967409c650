package process

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestCargoExample(t *testing.T) {
	cmd := CargoExample("cargo", "scene 1")

	assert.Equal(t, "cargo", cmd.Name)
	assert.Equal(t, []string{"run", "--release", "--example", "scene 1"}, cmd.Args)
	assert.Equal(t, "cargo run --release --example scene 1", cmd.String())
}

func TestExecRunner_StdoutToSinkStderrPassThrough(t *testing.T) {
	sh := requireShell(t)
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stderr: &stderr}

	result, err := r.Run(context.Background(), Command{
		Name: sh,
		Args: []string{"-c", "printf 'P3\\n1 1\\n255\\n'; echo compiling >&2"},
	}, &stdout)

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "P3\n1 1\n255\n", stdout.String())
	assert.Equal(t, "compiling\n", stderr.String())
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestExecRunner_NonZeroExitIsAResult(t *testing.T) {
	sh := requireShell(t)
	var stdout bytes.Buffer
	r := &ExecRunner{Stderr: &bytes.Buffer{}}

	result, err := r.Run(context.Background(), Command{Name: sh, Args: []string{"-c", "echo partial; exit 3"}}, &stdout)

	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.Succeeded())
	assert.Equal(t, "partial\n", stdout.String())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := &ExecRunner{Stderr: &bytes.Buffer{}}

	result, err := r.Run(context.Background(), Command{Name: "renderloop-no-such-binary"}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), Command{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestExecRunner_Cancelled(t *testing.T) {
	sh := requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := &ExecRunner{Stderr: &bytes.Buffer{}}
	_, err := r.Run(ctx, Command{Name: sh, Args: []string{"-c", "exec sleep 5"}}, &bytes.Buffer{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
