package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/keelbuild/keel/internal/pipeline"
)

// DefaultRunToken is used when a scenario omits run_token. A fixed
// default keeps golden comparison deterministic.
const DefaultRunToken = "test-run-default"

// Scenario defines a conformance test scenario. A scenario points at a
// policy directory, runs its pipeline, and asserts on the run report.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy is the path to the policy directory (CUE files) to
	// compile and run. Relative paths are resolved against the base
	// path given to LoadScenarioWithBasePath.
	Policy string `yaml:"policy"`

	// Event is the trigger event recorded on the run. Defaults to
	// manual.
	Event string `yaml:"event,omitempty"`

	// RunToken is a fixed run token for deterministic golden
	// comparison. Defaults to DefaultRunToken.
	RunToken string `yaml:"run_token,omitempty"`

	// Stages lists the expected terminal status of each stage, in
	// pipeline order. Optional fields within a StageExpect are subset
	// matched.
	Stages []StageExpect `yaml:"stages"`

	// Assertions validate the run report beyond per-stage status.
	// Supported types: outcome, stage_order, argv_contains, stage_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// StageExpect is the expected outcome of one stage.
type StageExpect struct {
	// Name is the stage name as declared in the policy.
	Name string `yaml:"name"`

	// Status is the expected terminal status: succeeded, failed, or
	// skipped.
	Status string `yaml:"status"`

	// ExitCode is the expected subprocess exit code. Only checked for
	// failed stages; succeeded stages always exit 0.
	ExitCode int `yaml:"exit_code,omitempty"`
}

// Assertion validates an aspect of the run report.
type Assertion struct {
	// Type specifies the assertion type:
	// - "outcome": check the run's terminal outcome and failed stage
	// - "stage_order": check stages appear in the given order
	// - "argv_contains": check a stage's argv contains a token
	// - "stage_count": check how many stages ended with a status
	Type string `yaml:"type"`

	// Outcome is the expected run outcome (used by outcome).
	Outcome string `yaml:"outcome,omitempty"`

	// FailedStage is the expected failing stage name (used by outcome).
	FailedStage string `yaml:"failed_stage,omitempty"`

	// Stages is the expected stage name order (used by stage_order).
	Stages []string `yaml:"stages,omitempty"`

	// Stage names the stage to inspect (used by argv_contains).
	Stage string `yaml:"stage,omitempty"`

	// Token is the argv entry that must be present (used by
	// argv_contains).
	Token string `yaml:"token,omitempty"`

	// Status is the stage status to count (used by stage_count).
	Status string `yaml:"status,omitempty"`

	// Count is the expected number of stages (used by stage_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome      = "outcome"
	AssertStageOrder   = "stage_order"
	AssertArgvContains = "argv_contains"
	AssertStageCount   = "stage_count"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the policy path relative to the provided base path. This is
// useful when scenario files reference policies using relative paths.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs
	// "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Policy != "" && !filepath.IsAbs(scenario.Policy) && basePath != "" {
		scenario.Policy = filepath.Join(basePath, scenario.Policy)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Policy == "" {
		return fmt.Errorf("policy is required")
	}
	if _, err := os.Stat(s.Policy); os.IsNotExist(err) {
		return fmt.Errorf("policy directory not found: %s", s.Policy)
	}

	if s.Event != "" && !pipeline.ValidEvents[s.Event] {
		return fmt.Errorf("unknown event %q", s.Event)
	}

	if len(s.Stages) == 0 {
		return fmt.Errorf("stages list is required and must be non-empty")
	}

	for i, stage := range s.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stages[%d]: name is required", i)
		}
		switch stage.Status {
		case string(pipeline.StageSucceeded), string(pipeline.StageFailed), string(pipeline.StageSkipped):
		default:
			return fmt.Errorf("stages[%d]: unknown status %q", i, stage.Status)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutcome:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome", index)
		}
	case AssertStageOrder:
		if len(a.Stages) == 0 {
			return fmt.Errorf("assertions[%d]: stages list is required for stage_order", index)
		}
	case AssertArgvContains:
		if a.Stage == "" {
			return fmt.Errorf("assertions[%d]: stage is required for argv_contains", index)
		}
		if a.Token == "" {
			return fmt.Errorf("assertions[%d]: token is required for argv_contains", index)
		}
	case AssertStageCount:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for stage_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stage_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
