package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/keelbuild/keel/internal/policy"
)

// DefaultToolchain is used when the policy omits the toolchain field.
const DefaultToolchain = "cargo"

// CompilePolicy parses a CUE value into a Policy. Uses the CUE SDK's Go
// API directly (not a CLI subprocess).
//
// The value should be the root of the merged policy instance, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`toolchain: "cargo", alias: { ... }`)
//	p, err := CompilePolicy(v)
func CompilePolicy(v cue.Value) (*policy.Policy, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &policy.Policy{
		Toolchain: DefaultToolchain,
		Aliases:   policy.AliasTable{},
	}

	// Parse toolchain (optional, defaults to cargo)
	toolVal := v.LookupPath(cue.ParsePath("toolchain"))
	if toolVal.Exists() {
		tool, err := toolVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		p.Toolchain = tool
	}

	// Parse alias table (optional, can be empty)
	var err error
	p.Aliases, err = parseAliases(v)
	if err != nil {
		return nil, err
	}

	// Parse vendor policy (optional)
	p.Vendor, err = parseVendor(v)
	if err != nil {
		return nil, err
	}

	// Parse lint rules (optional)
	p.Lints, err = parseLints(v)
	if err != nil {
		return nil, err
	}

	// Parse pipeline stages (optional; required only for ci runs)
	p.Stages, err = parseStages(v)
	if err != nil {
		return nil, err
	}

	// Synthesize the reserved __vendored alias from the vendor policy.
	// User config may not define it; that is checked in parseAliases.
	if vendored, ok := p.Vendor.VendoredAlias(); ok {
		p.Aliases[vendored.Name] = vendored
	}

	return p, nil
}

// parseAliases reads the alias table. Each entry is either a single
// string (split on whitespace, Cargo-style) or a list of token strings.
func parseAliases(v cue.Value) (policy.AliasTable, error) {
	table := policy.AliasTable{}

	aliasVal := v.LookupPath(cue.ParsePath("alias"))
	if !aliasVal.Exists() {
		return table, nil
	}

	iter, err := aliasVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := strings.Trim(iter.Label(), `"`)
		if name == policy.VendoredAliasName {
			return nil, &CompileError{
				Field:   "alias." + name,
				Message: fmt.Sprintf("%s is reserved and synthesized from the vendor policy", policy.VendoredAliasName),
				Pos:     iter.Value().Pos(),
			}
		}

		tokens, err := parseAliasTokens(name, iter.Value())
		if err != nil {
			return nil, err
		}
		table[name] = policy.Alias{Name: name, Tokens: tokens}
	}
	return table, nil
}

func parseAliasTokens(name string, v cue.Value) ([]policy.Token, error) {
	// Single-string form: split on whitespace.
	if s, err := v.String(); err == nil {
		fields := strings.Fields(s)
		tokens := make([]policy.Token, 0, len(fields))
		for _, f := range fields {
			tokens = append(tokens, ParseToken(f))
		}
		return tokens, nil
	}

	// List form: one token per element.
	listIter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "alias." + name,
			Message: "alias must be a string or a list of strings",
			Pos:     v.Pos(),
		}
	}

	var tokens []policy.Token
	for listIter.Next() {
		s, err := listIter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		tokens = append(tokens, ParseToken(s))
	}
	return tokens, nil
}

// ParseToken maps the config spelling of a token to its kind:
//
//	'text'  single-quoted  -> literal, never expanded
//	@name                  -> explicit alias reference, must exist
//	text                   -> expands only if it names an alias
func ParseToken(s string) policy.Token {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return policy.Literal(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "@") {
		return policy.Ref(s[1:])
	}
	return policy.Auto(s)
}

func parseVendor(v cue.Value) (policy.VendorPolicy, error) {
	var vendor policy.VendorPolicy

	vendorVal := v.LookupPath(cue.ParsePath("vendor"))
	if !vendorVal.Exists() {
		return vendor, nil
	}

	enabledVal := vendorVal.LookupPath(cue.ParsePath("enabled"))
	if enabledVal.Exists() {
		enabled, err := enabledVal.Bool()
		if err != nil {
			return vendor, formatCUEError(err)
		}
		vendor.Enabled = enabled
	}

	pathVal := vendorVal.LookupPath(cue.ParsePath("path"))
	if pathVal.Exists() {
		path, err := pathVal.String()
		if err != nil {
			return vendor, formatCUEError(err)
		}
		vendor.Path = path
	}

	if vendor.Enabled && vendor.Path == "" {
		return vendor, &CompileError{
			Field:   "vendor.path",
			Message: "path is required when vendoring is enabled",
			Pos:     vendorVal.Pos(),
		}
	}

	requiresVal := vendorVal.LookupPath(cue.ParsePath("requires"))
	if requiresVal.Exists() {
		iter, err := requiresVal.List()
		if err != nil {
			return vendor, formatCUEError(err)
		}
		for iter.Next() {
			dep, err := iter.Value().String()
			if err != nil {
				return vendor, formatCUEError(err)
			}
			vendor.Requires = append(vendor.Requires, dep)
		}
	}

	return vendor, nil
}

func parseLints(v cue.Value) ([]policy.LintRule, error) {
	lintsVal := v.LookupPath(cue.ParsePath("lints"))
	if !lintsVal.Exists() {
		return nil, nil
	}

	iter, err := lintsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []policy.LintRule
	for iter.Next() {
		entry := iter.Value()

		nameVal := entry.LookupPath(cue.ParsePath("name"))
		name, err := nameVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "lints.name",
				Message: "lint rule name is required",
				Pos:     entry.Pos(),
			}
		}

		sevVal := entry.LookupPath(cue.ParsePath("severity"))
		sevStr, err := sevVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "lints.severity",
				Message: fmt.Sprintf("severity is required for lint %q", name),
				Pos:     entry.Pos(),
			}
		}
		sev, err := policy.ParseSeverity(sevStr)
		if err != nil {
			return nil, &CompileError{
				Field:   "lints.severity",
				Message: err.Error(),
				Pos:     sevVal.Pos(),
			}
		}

		rules = append(rules, policy.LintRule{Name: name, Severity: sev})
	}
	return rules, nil
}

func parseStages(v cue.Value) ([]policy.PipelineStage, error) {
	stagesVal := v.LookupPath(cue.ParsePath("pipeline.stages"))
	if !stagesVal.Exists() {
		return nil, nil
	}

	iter, err := stagesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var stages []policy.PipelineStage
	seen := map[string]bool{}
	ordinal := 0
	for iter.Next() {
		entry := iter.Value()

		name, err := entry.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   "pipeline.stages.name",
				Message: "stage name is required",
				Pos:     entry.Pos(),
			}
		}
		if seen[name] {
			return nil, &CompileError{
				Field:   "pipeline.stages",
				Message: fmt.Sprintf("duplicate stage name %q", name),
				Pos:     entry.Pos(),
			}
		}
		seen[name] = true

		alias, err := entry.LookupPath(cue.ParsePath("alias")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   "pipeline.stages.alias",
				Message: fmt.Sprintf("alias is required for stage %q", name),
				Pos:     entry.Pos(),
			}
		}

		stage := policy.PipelineStage{Name: name, Alias: alias, Ordinal: ordinal}
		ordinal++

		injectVal := entry.LookupPath(cue.ParsePath("inject_lints"))
		if injectVal.Exists() {
			inject, err := injectVal.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			stage.InjectLints = inject
		}

		stages = append(stages, stage)
	}
	return stages, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
