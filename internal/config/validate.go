package config

import (
	"fmt"

	"github.com/keelbuild/keel/internal/policy"
)

// ValidationReport summarizes a validated policy for display.
type ValidationReport struct {
	Fingerprint string                `json:"fingerprint"`
	AliasCount  int                   `json:"alias_count"`
	LintCount   int                   `json:"lint_count"`
	StageCount  int                   `json:"stage_count"`
	Overrides   []policy.LintOverride `json:"overrides,omitempty"`
}

// Validate checks a compiled policy for errors the CUE schema cannot
// express: alias cycles and dangling references anywhere in the table,
// stages pointing at undefined aliases, and the vendor directory
// contract. Lint severity overrides are surfaced in the report and
// warned about by callers, never failed.
//
// Validation runs entirely before any subprocess is spawned.
func Validate(p *policy.Policy) (*ValidationReport, error) {
	// Every alias must resolve; this surfaces cycles and dangling
	// explicit references for the whole table, not just the invoked one.
	if _, err := p.Aliases.ResolveAll(); err != nil {
		return nil, err
	}

	for _, stage := range p.Stages {
		if _, ok := p.Aliases[stage.Alias]; !ok {
			return nil, &policy.ConfigurationError{
				Field:   fmt.Sprintf("pipeline.stages.%s", stage.Name),
				Message: fmt.Sprintf("stage references undefined alias %q", stage.Alias),
			}
		}
	}

	if err := p.Vendor.Check(); err != nil {
		return nil, err
	}

	_, overrides := policy.EffectivePolicy(p.Lints)

	fp, err := policy.Fingerprint(p)
	if err != nil {
		return nil, err
	}

	return &ValidationReport{
		Fingerprint: fp,
		AliasCount:  len(p.Aliases),
		LintCount:   len(p.Lints),
		StageCount:  len(p.Stages),
		Overrides:   overrides,
	}, nil
}
