package policy

import "fmt"

// LintOverride records a later rule replacing an earlier severity for
// the same diagnostic. Overrides are surfaced (logged as warnings by
// callers), never fatal.
type LintOverride struct {
	Name string
	From Severity
	To   Severity
}

// EffectiveLints is the last-wins mapping from diagnostic name to
// severity, preserving first-occurrence order for deterministic flag
// emission.
type EffectiveLints struct {
	names []string
	sev   map[string]Severity
}

// EffectivePolicy folds an ordered rule list left-to-right into the
// effective mapping. Later entries overwrite earlier ones for the same
// name; each severity-changing overwrite is reported as a LintOverride.
// The fold is pure and idempotent: applying the same list again yields
// the same mapping.
func EffectivePolicy(rules []LintRule) (*EffectiveLints, []LintOverride) {
	e := &EffectiveLints{sev: make(map[string]Severity, len(rules))}
	var overrides []LintOverride

	for _, r := range rules {
		prev, seen := e.sev[r.Name]
		if !seen {
			e.names = append(e.names, r.Name)
		} else if prev != r.Severity {
			overrides = append(overrides, LintOverride{Name: r.Name, From: prev, To: r.Severity})
		}
		e.sev[r.Name] = r.Severity
	}

	return e, overrides
}

// Severity reports the effective severity for a diagnostic name.
func (e *EffectiveLints) Severity(name string) (Severity, bool) {
	s, ok := e.sev[name]
	return s, ok
}

// Len returns the number of effective entries.
func (e *EffectiveLints) Len() int {
	return len(e.names)
}

// Flags emits one toolchain flag per effective entry, in
// first-occurrence order: --warn=<name> for Warn, --deny=<name> for
// Deny. A Deny violation surfaced by the toolchain fails the enclosing
// stage via its exit code; a Warn violation is reported but non-fatal.
func (e *EffectiveLints) Flags() []string {
	flags := make([]string, 0, len(e.names))
	for _, name := range e.names {
		switch e.sev[name] {
		case SeverityDeny:
			flags = append(flags, fmt.Sprintf("--deny=%s", name))
		default:
			flags = append(flags, fmt.Sprintf("--warn=%s", name))
		}
	}
	return flags
}
