package harness

import "github.com/keelbuild/keel/internal/pipeline"

// checkStageExpectations compares the run's stage outcomes against the
// scenario's expected stages, positionally.
func checkStageExpectations(scenario *Scenario, run *pipeline.PipelineResult, result *Result) {
	if len(run.Stages) != len(scenario.Stages) {
		result.AddError("expected %d stages, run has %d", len(scenario.Stages), len(run.Stages))
		return
	}

	for i, expect := range scenario.Stages {
		actual := run.Stages[i]

		if actual.Name != expect.Name {
			result.AddError("stages[%d]: expected stage %q, got %q", i, expect.Name, actual.Name)
			continue
		}
		if string(actual.Status) != expect.Status {
			result.AddError("stage %q: expected status %s, got %s", expect.Name, expect.Status, actual.Status)
			continue
		}
		if actual.Status == pipeline.StageFailed && expect.ExitCode != 0 && actual.ExitCode != expect.ExitCode {
			result.AddError("stage %q: expected exit code %d, got %d", expect.Name, expect.ExitCode, actual.ExitCode)
		}
	}
}

// checkAssertions evaluates every scenario assertion against the run.
func checkAssertions(scenario *Scenario, run *pipeline.PipelineResult, result *Result) {
	for i, assertion := range scenario.Assertions {
		switch assertion.Type {
		case AssertOutcome:
			checkOutcome(i, &assertion, run, result)
		case AssertStageOrder:
			checkStageOrder(i, &assertion, run, result)
		case AssertArgvContains:
			checkArgvContains(i, &assertion, run, result)
		case AssertStageCount:
			checkStageCount(i, &assertion, run, result)
		}
	}
}

func checkOutcome(index int, a *Assertion, run *pipeline.PipelineResult, result *Result) {
	if string(run.Outcome) != a.Outcome {
		result.AddError("assertions[%d]: expected outcome %s, got %s", index, a.Outcome, run.Outcome)
		return
	}
	if a.FailedStage != "" && run.FailedStage != a.FailedStage {
		result.AddError("assertions[%d]: expected failed stage %q, got %q", index, a.FailedStage, run.FailedStage)
	}
}

func checkStageOrder(index int, a *Assertion, run *pipeline.PipelineResult, result *Result) {
	// Subsequence match: the asserted names must appear in order, but
	// other stages may be interleaved.
	pos := 0
	for _, stage := range run.Stages {
		if pos < len(a.Stages) && stage.Name == a.Stages[pos] {
			pos++
		}
	}
	if pos != len(a.Stages) {
		result.AddError("assertions[%d]: stage order %v not satisfied (matched %d of %d)",
			index, a.Stages, pos, len(a.Stages))
	}
}

func checkArgvContains(index int, a *Assertion, run *pipeline.PipelineResult, result *Result) {
	for _, stage := range run.Stages {
		if stage.Name != a.Stage {
			continue
		}
		for _, arg := range stage.Argv {
			if arg == a.Token {
				return
			}
		}
		result.AddError("assertions[%d]: stage %q argv %v does not contain %q",
			index, a.Stage, stage.Argv, a.Token)
		return
	}
	result.AddError("assertions[%d]: no stage named %q in run", index, a.Stage)
}

func checkStageCount(index int, a *Assertion, run *pipeline.PipelineResult, result *Result) {
	count := 0
	for _, stage := range run.Stages {
		if string(stage.Status) == a.Status {
			count++
		}
	}
	if count != a.Count {
		result.AddError("assertions[%d]: expected %d stages with status %s, got %d",
			index, a.Count, a.Status, count)
	}
}
