package policy

import "fmt"

// TokenKind controls how a token participates in alias expansion.
type TokenKind int

const (
	// TokenAuto expands when the text matches a defined alias name,
	// otherwise passes through as a literal.
	TokenAuto TokenKind = iota

	// TokenLiteral never expands, even if the text collides with an
	// alias name. Written as 'text' in policy files.
	TokenLiteral

	// TokenRef must name a defined alias; an undefined reference is an
	// UnknownAliasError. Written as @name in policy files.
	TokenRef
)

// String returns the config-surface spelling of the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenRef:
		return "ref"
	default:
		return "auto"
	}
}

// Token is one argument fragment of an alias definition.
type Token struct {
	Text string    `json:"text"`
	Kind TokenKind `json:"kind"`
}

// Literal builds a literal token.
func Literal(text string) Token { return Token{Text: text, Kind: TokenLiteral} }

// Ref builds an explicit alias-reference token.
func Ref(name string) Token { return Token{Text: name, Kind: TokenRef} }

// Auto builds a token that expands only if the text names an alias.
func Auto(text string) Token { return Token{Text: text, Kind: TokenAuto} }

// Alias maps a short command name to an ordered argument sequence.
// Tokens may reference other aliases; references are resolved
// transitively before execution.
type Alias struct {
	Name   string  `json:"name"`
	Tokens []Token `json:"tokens"`
}

// AliasTable indexes alias definitions by name. The table is the arena
// for resolution: expansion walks it as a directed graph with an
// on-path visited set, so cycles are detected rather than looped.
type AliasTable map[string]Alias

// VendoredAliasName is the reserved alias synthesized from the vendor
// policy at load time. User configuration may not redefine it.
const VendoredAliasName = "__vendored"

// Severity is the build impact of a lint diagnostic.
type Severity string

const (
	// SeverityWarn diagnostics are reported but never fail a build.
	SeverityWarn Severity = "warn"

	// SeverityDeny diagnostics fail the enclosing build stage.
	SeverityDeny Severity = "deny"
)

// ValidSeverities defines the allowed severity values.
var ValidSeverities = map[Severity]bool{
	SeverityWarn: true,
	SeverityDeny: true,
}

// ParseSeverity converts a config string to a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !ValidSeverities[sev] {
		return "", fmt.Errorf("invalid severity %q: must be %q or %q", s, SeverityWarn, SeverityDeny)
	}
	return sev, nil
}

// LintRule binds a diagnostic name to a severity. Rule order matters
// only for duplicate names: later entries override earlier ones.
type LintRule struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
}

// VendorPolicy pins dependency resolution to a local vendor directory.
// When enabled, resolution is frozen (no lock mutation) and offline (no
// registry access); a dependency absent from the vendor directory is a
// hard failure, never a silent fallback.
type VendorPolicy struct {
	Enabled  bool     `json:"enabled"`
	Path     string   `json:"path"`
	Requires []string `json:"requires,omitempty"`
}

// PipelineStage is one named, ordered step of a CI run. Each stage maps
// 1:1 to one alias invocation of the toolchain binary.
type PipelineStage struct {
	Name    string `json:"name"`
	Alias   string `json:"alias"`
	Ordinal int    `json:"ordinal"`

	// InjectLints appends the effective lint flags to the resolved argv.
	InjectLints bool `json:"inject_lints,omitempty"`
}

// Policy is the complete compiled configuration for one invocation.
// It is immutable after load.
type Policy struct {
	// Toolchain is the underlying binary the aliases drive (e.g. "cargo").
	Toolchain string `json:"toolchain"`

	Aliases AliasTable      `json:"aliases"`
	Vendor  VendorPolicy    `json:"vendor"`
	Lints   []LintRule      `json:"lints"`
	Stages  []PipelineStage `json:"stages"`
}
