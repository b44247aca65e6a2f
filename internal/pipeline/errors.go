package pipeline

import "fmt"

// StageErrorCode categorizes stage failures.
type StageErrorCode string

const (
	// ErrCodeLaunchFailed indicates the subprocess could not be started
	// (e.g. missing toolchain binary).
	ErrCodeLaunchFailed StageErrorCode = "LAUNCH_FAILED"

	// ErrCodeNonZeroExit indicates the subprocess exited with a failure
	// status.
	ErrCodeNonZeroExit StageErrorCode = "NONZERO_EXIT"

	// ErrCodeCancelled indicates the run context was cancelled while
	// the stage was in flight.
	ErrCodeCancelled StageErrorCode = "CANCELLED"

	// ErrCodeResolution indicates the stage's alias failed to resolve.
	ErrCodeResolution StageErrorCode = "RESOLUTION"
)

// StageError reports a stage failure with enough context to reproduce
// it: the stage name and the reason.
type StageError struct {
	Code     StageErrorCode
	Stage    string
	ExitCode int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Code == ErrCodeNonZeroExit {
		return fmt.Sprintf("stage %q failed: exit code %d", e.Stage, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("stage %q failed: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("stage %q failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}
