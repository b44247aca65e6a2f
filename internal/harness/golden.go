package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/keelbuild/keel/internal/pipeline"
	"github.com/keelbuild/keel/internal/policy"
)

// ReportSnapshot captures the deterministic parts of a run report for
// golden comparison. Stdout, stderr, and the policy hash are excluded:
// output can vary across environments and the hash changes whenever a
// testdata policy is touched, which would churn every golden file.
type ReportSnapshot struct {
	ScenarioName string
	Run          *pipeline.PipelineResult
}

// toCanonicalMap converts the snapshot to a map[string]any, the input
// type policy.MarshalCanonical operates on.
func (s *ReportSnapshot) toCanonicalMap() map[string]any {
	stageList := make([]any, len(s.Run.Stages))
	for i, stage := range s.Run.Stages {
		stageMap := map[string]any{
			"name":      stage.Name,
			"ordinal":   stage.Ordinal,
			"seq":       stage.Seq,
			"status":    string(stage.Status),
			"exit_code": stage.ExitCode,
		}
		if stage.Argv != nil {
			argv := make([]any, len(stage.Argv))
			for j, arg := range stage.Argv {
				argv[j] = arg
			}
			stageMap["argv"] = argv
		}
		if stage.Reason != "" {
			stageMap["reason"] = stage.Reason
		}
		stageList[i] = stageMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"run_token":     s.Run.RunToken,
		"event":         s.Run.Event,
		"outcome":       string(s.Run.Outcome),
		"stages":        stageList,
	}
	if s.Run.FailedStage != "" {
		result["failed_stage"] = s.Run.FailedStage
	}
	if s.Run.ExitInfo != "" {
		result["exit_info"] = s.Run.ExitInfo
	}
	return result
}

// RunWithGolden executes a scenario and compares the run report against
// a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails. Test failure (via
// goldie) occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's run report against a golden
// file. This is useful when a scenario has already run and the caller
// wants the comparison without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := ReportSnapshot{
		ScenarioName: scenarioName,
		Run:          result.Run,
	}

	reportJSON, err := policy.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, reportJSON)

	return nil
}
