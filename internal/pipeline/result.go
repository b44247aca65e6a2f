package pipeline

// StageStatus is the terminal status of one stage within a run.
type StageStatus string

const (
	// StageSucceeded means the stage's subprocess exited 0.
	StageSucceeded StageStatus = "succeeded"

	// StageFailed means the subprocess exited non-zero, could not be
	// launched, or was cancelled mid-flight.
	StageFailed StageStatus = "failed"

	// StageSkipped means an earlier stage failed, so this one never ran.
	StageSkipped StageStatus = "skipped"
)

// Outcome is the terminal state of the whole pipeline.
type Outcome string

const (
	// OutcomeSucceeded means every stage exited successfully.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed means some stage failed; FailedStage names it.
	OutcomeFailed Outcome = "failed"
)

// StageOutcome is the immutable record of one stage.
type StageOutcome struct {
	Name    string      `json:"name"`
	Ordinal int         `json:"ordinal"`
	Seq     int64       `json:"seq"`
	Status  StageStatus `json:"status"`

	// Argv is the fully resolved command line, toolchain binary first.
	Argv []string `json:"argv,omitempty"`

	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`

	// Reason explains a failure that has no exit code: launch error,
	// alias resolution error, or cancellation.
	Reason string `json:"reason,omitempty"`
}

// PipelineResult is the immutable outcome of one run. Stages holds one
// entry per configured stage, in ordinal order, including skipped ones.
type PipelineResult struct {
	RunToken    string         `json:"run_token"`
	PolicyHash  string         `json:"policy_hash"`
	Event       string         `json:"event,omitempty"`
	Outcome     Outcome        `json:"outcome"`
	FailedStage string         `json:"failed_stage,omitempty"`
	ExitInfo    string         `json:"exit_info,omitempty"`
	Stages      []StageOutcome `json:"stages"`
}

// Failed reports whether the run ended in StageFailed.
func (r *PipelineResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}
