package policy

import (
	"fmt"
	"os"
	"strings"
)

// vendorOverrideTokens is the resolution override injected when
// vendoring is enabled: redirect the default registry source to the
// vendor directory, forbid lock-file mutation (--frozen), and forbid
// network access (--offline).
var vendorOverrideTokens = []string{
	"--config",
	`source.crates-io.replace-with = "vendored-sources"`,
	"--frozen",
	"--offline",
}

// Override produces the resolution-configuration override for this
// vendor policy as literal tokens. When the policy is disabled it is
// the identity: no override, nil tokens.
func (v VendorPolicy) Override() []Token {
	if !v.Enabled {
		return nil
	}
	tokens := make([]Token, len(vendorOverrideTokens))
	for i, text := range vendorOverrideTokens {
		tokens[i] = Literal(text)
	}
	return tokens
}

// VendoredAlias synthesizes the reserved __vendored alias from the
// override tokens. Returns false when vendoring is disabled.
func (v VendorPolicy) VendoredAlias() (Alias, bool) {
	if !v.Enabled {
		return Alias{}, false
	}
	return Alias{Name: VendoredAliasName, Tokens: v.Override()}, true
}

// Check verifies the vendor directory exists and contains every
// required dependency. It runs before any subprocess is spawned and is
// the only filesystem access this package performs.
//
// A dependency is satisfied by a subdirectory named exactly after it or
// by a version-qualified directory ("name-1.2.3"). An absent vendor
// path is a ConfigurationError naming the path; vendoring is never
// silently disabled.
func (v VendorPolicy) Check() error {
	if !v.Enabled {
		return nil
	}

	entries, err := os.ReadDir(v.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigurationError{
				Field:   "vendor.path",
				Message: fmt.Sprintf("vendor directory does not exist: %s", v.Path),
			}
		}
		return &ConfigurationError{
			Field:   "vendor.path",
			Message: fmt.Sprintf("vendor directory not readable: %v", err),
		}
	}

	dirs := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs[entry.Name()] = true
		}
	}

	for _, dep := range v.Requires {
		if dirs[dep] {
			continue
		}
		if hasVersionedDir(dirs, dep) {
			continue
		}
		return &MissingDependencyError{Path: v.Path, Dependency: dep}
	}
	return nil
}

// hasVersionedDir reports whether any directory is a version-qualified
// form of the dependency name ("serde-1.0.210" satisfies "serde").
func hasVersionedDir(dirs map[string]bool, dep string) bool {
	prefix := dep + "-"
	for name := range dirs {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		// The suffix must start with a digit to avoid "serde-derive"
		// satisfying "serde".
		rest := name[len(prefix):]
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
	}
	return false
}
