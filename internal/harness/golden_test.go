package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/pipeline"
	"github.com/keelbuild/keel/internal/policy"
)

func TestGoldenCleanPipeline(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/clean-pipeline.yaml", "testdata")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGoldenHaltingPipeline(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/halting-pipeline.yaml", "testdata")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshotExcludesOutput(t *testing.T) {
	snapshot := ReportSnapshot{
		ScenarioName: "s",
		Run: &pipeline.PipelineResult{
			RunToken: "tok",
			Event:    "manual",
			Outcome:  pipeline.OutcomeSucceeded,
			Stages: []pipeline.StageOutcome{
				{Name: "build", Seq: 1, Status: pipeline.StageSucceeded,
					Stdout: "nondeterministic build output",
					Argv:   []string{"cargo", "build"}},
			},
		},
	}

	data, err := policy.MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "nondeterministic")
	assert.NotContains(t, string(data), "policy_hash")
}

func TestSnapshotIncludesFailureDetail(t *testing.T) {
	snapshot := ReportSnapshot{ScenarioName: "s", Run: failedRun()}

	m := snapshot.toCanonicalMap()
	assert.Equal(t, "lint-check", m["failed_stage"])
	assert.Equal(t, "exit code 3", m["exit_info"])

	_, err := policy.MarshalCanonical(m)
	require.NoError(t, err)
}

func TestSnapshotStableAcrossMarshals(t *testing.T) {
	snapshot := ReportSnapshot{ScenarioName: "s", Run: failedRun()}

	first, err := policy.MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)
	second, err := policy.MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
