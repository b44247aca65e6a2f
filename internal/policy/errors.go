package policy

import (
	"fmt"
	"strings"
)

// ConfigurationError represents an invalid policy detected at load
// time, before any stage runs. Examples: missing vendor path, malformed
// alias table, reserved alias redefined.
type ConfigurationError struct {
	// Field identifies the offending configuration element
	// (e.g. "vendor.path", "alias.v-check").
	Field string

	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// UnknownAliasError reports resolution of a name that is not defined in
// the alias table. It is fatal only to the specific alias invoked.
type UnknownAliasError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownAliasError) Error() string {
	return fmt.Sprintf("unknown alias %q", e.Name)
}

// CyclicAliasError reports a self- or mutually-referential alias chain.
// Path is the expansion chain from the invoked alias to the repeated
// name, so the cycle is attributable and reproducible.
type CyclicAliasError struct {
	Path []string
}

// Error implements the error interface.
func (e *CyclicAliasError) Error() string {
	return fmt.Sprintf("cyclic alias reference: %s", strings.Join(e.Path, " -> "))
}

// MissingDependencyError reports a dependency required by the vendor
// policy that has no subdirectory under the vendor path. Surfaced
// before any compilation subprocess is spawned.
type MissingDependencyError struct {
	Path       string
	Dependency string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("vendor directory %s is missing dependency %q", e.Path, e.Dependency)
}
