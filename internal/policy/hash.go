package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainPolicy is the domain prefix for policy fingerprints. The
// version suffix enables future algorithm migration.
const DomainPolicy = "keel/policy/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a policy.
// Two workspaces with byte-different config files but identical
// compiled policies share a fingerprint, so a pipeline run is
// attributable to an exact policy revision.
func Fingerprint(p *Policy) (string, error) {
	canonical, err := MarshalCanonical(p.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("fingerprint: failed to marshal policy: %w", err)
	}
	return hashWithDomain(DomainPolicy, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error. Use only in
// tests or when the policy is known to be valid.
func MustFingerprint(p *Policy) string {
	fp, err := Fingerprint(p)
	if err != nil {
		panic(err)
	}
	return fp
}

// canonicalMap converts the policy to the map form MarshalCanonical
// accepts. Alias iteration order does not matter: canonical objects
// sort their keys.
func (p *Policy) canonicalMap() map[string]any {
	aliases := make(map[string]any, len(p.Aliases))
	for name, alias := range p.Aliases {
		tokens := make([]any, len(alias.Tokens))
		for i, tok := range alias.Tokens {
			tokens[i] = map[string]any{
				"text": tok.Text,
				"kind": tok.Kind.String(),
			}
		}
		aliases[name] = tokens
	}

	lints := make([]any, len(p.Lints))
	for i, rule := range p.Lints {
		lints[i] = map[string]any{
			"name":     rule.Name,
			"severity": string(rule.Severity),
		}
	}

	stages := make([]any, len(p.Stages))
	for i, stage := range p.Stages {
		stages[i] = map[string]any{
			"name":         stage.Name,
			"alias":        stage.Alias,
			"ordinal":      stage.Ordinal,
			"inject_lints": stage.InjectLints,
		}
	}

	requires := make([]any, len(p.Vendor.Requires))
	for i, dep := range p.Vendor.Requires {
		requires[i] = dep
	}

	return map[string]any{
		"toolchain": p.Toolchain,
		"aliases":   aliases,
		"vendor": map[string]any{
			"enabled":  p.Vendor.Enabled,
			"path":     p.Vendor.Path,
			"requires": requires,
		},
		"lints":  lints,
		"stages": stages,
	}
}
