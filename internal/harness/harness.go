package harness

import (
	"context"
	"fmt"

	"github.com/keelbuild/keel/internal/config"
	"github.com/keelbuild/keel/internal/pipeline"
	"github.com/keelbuild/keel/internal/policy"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs with a fresh logical clock and the scenario's
// fixed run token, so repeated runs produce identical reports.
//
// Execution flow:
//  1. Compile the policy directory
//  2. Run the pipeline with the scenario's event
//  3. Check per-stage expectations against the run report
//  4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with caller-controlled cancellation.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	p, err := config.Load(scenario.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	runner := &pipeline.Runner{
		Executor: &pipeline.ProcessExecutor{},
		TokenGen: pipeline.NewFixedGenerator(runToken(scenario)),
		Clock:    pipeline.NewClock(),
		Env:      policy.EnvConfig{},
	}

	event := scenario.Event
	if event == "" {
		event = pipeline.EventManual
	}

	run, err := runner.Run(ctx, p, event)
	if err != nil {
		return nil, fmt.Errorf("pipeline could not start: %w", err)
	}

	result := NewResult(run)
	checkStageExpectations(scenario, run, result)
	checkAssertions(scenario, run, result)
	return result, nil
}

func runToken(scenario *Scenario) string {
	if scenario.RunToken != "" {
		return scenario.RunToken
	}
	return DefaultRunToken
}
