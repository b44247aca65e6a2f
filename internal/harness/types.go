package harness

import (
	"fmt"

	"github.com/keelbuild/keel/internal/pipeline"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success. True if every stage
	// expectation and assertion matched.
	Pass bool `json:"pass"`

	// Run is the pipeline run report the expectations were checked
	// against. Also used for golden comparison.
	Run *pipeline.PipelineResult `json:"run"`

	// Errors contains validation error messages. Empty if Pass is
	// true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result wrapping the given run report.
func NewResult(run *pipeline.PipelineResult) *Result {
	return &Result{
		Pass:   true,
		Run:    run,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
