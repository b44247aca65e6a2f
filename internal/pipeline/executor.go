package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
)

// ExecResult holds the captured output of one stage subprocess.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// StageExecutor runs one stage command. Implementations must be
// synchronous: Execute returns only after the process has exited.
type StageExecutor interface {
	Execute(ctx context.Context, argv []string) (*ExecResult, error)
}

// ProcessExecutor spawns a real subprocess per stage.
//
// The process is placed in its own process group so that cancellation
// kills the whole tree, not just the direct child.
type ProcessExecutor struct {
	// Dir is the working directory for stage commands. Empty means the
	// keel process's own working directory.
	Dir string
}

// Execute runs argv[0] with argv[1:] as arguments, capturing stdout
// and stderr. A non-zero exit is not an error here; the exit code is
// reported in the result and classified by the runner. Launch failures
// and cancellation are errors.
func (e *ProcessExecutor) Execute(ctx context.Context, argv []string) (*ExecResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		// Kill the entire process group (negative PID).
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done // Wait for the process to actually exit
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to execute command: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}
