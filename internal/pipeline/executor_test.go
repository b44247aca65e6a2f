package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessExecutorCapturesOutput(t *testing.T) {
	e := &ProcessExecutor{}

	res, err := e.Execute(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
}

func TestProcessExecutorNonZeroExitIsNotAnError(t *testing.T) {
	e := &ProcessExecutor{}

	res, err := e.Execute(context.Background(), []string{"sh", "-c", "exit 42"})
	require.NoError(t, err)
	assert.Equal(t, 42, res.ExitCode)
}

func TestProcessExecutorLaunchFailure(t *testing.T) {
	e := &ProcessExecutor{}

	_, err := e.Execute(context.Background(), []string{"/nonexistent/binary-xyz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start command")
}

func TestProcessExecutorEmptyArgv(t *testing.T) {
	e := &ProcessExecutor{}

	_, err := e.Execute(context.Background(), nil)
	require.Error(t, err)
}

func TestProcessExecutorCancellationKillsProcess(t *testing.T) {
	e := &ProcessExecutor{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := e.Execute(ctx, []string{"sh", "-c", "sleep 30"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.Less(t, elapsed, 10*time.Second, "cancellation must not wait for the sleep")
}

func TestProcessExecutorWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	e := &ProcessExecutor{Dir: dir}

	res, err := e.Execute(context.Background(), []string{"pwd"})
	require.NoError(t, err)
	assert.Contains(t, string(res.Stdout), dir)
}
