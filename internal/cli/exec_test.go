package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/policy"
)

// Exec tests drive a real subprocess; "sh" stands in for the toolchain
// so exit-code passthrough can be observed.

func TestExecPassesResolvedTokens(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "echo"
alias: greet: ["hello", "world"]
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "exec", "greet", dir)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", stdout)
}

func TestExecExitCodePassthrough(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "sh"
alias: fail: ["-c", "'exit 7'"]
`)

	_, _, err := execKeel(t, policy.EnvConfig{}, "exec", "fail", dir)
	require.Error(t, err)
	assert.Equal(t, 7, GetExitCode(err))
}

func TestExecExtraArgsAfterDash(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "echo"
alias: greet: ["hello"]
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "exec", "greet", dir, "--", "--flag")
	require.NoError(t, err)
	assert.Equal(t, "hello --flag\n", stdout)
}

func TestExecAppendsLintFlags(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "echo"
alias: check: ["check"]
lints: [{name: "unwrap-used", severity: "deny"}]
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "exec", "check", dir, "--lint-flags")
	require.NoError(t, err)
	assert.Equal(t, "check --deny=unwrap-used\n", stdout)
}

func TestExecVendorCheckBeforeSpawn(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "echo"
alias: b: ["build"]
vendor: {
	enabled: true
	path:    "/nonexistent/vendor-dir"
}
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "exec", "b", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	// The toolchain must not have run.
	assert.Empty(t, stdout)
}

func TestExecUnknownAlias(t *testing.T) {
	dir := writePolicy(t, `toolchain: "echo"`)

	_, _, err := execKeel(t, policy.EnvConfig{}, "exec", "nope", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecMissingToolchainBinary(t *testing.T) {
	dir := writePolicy(t, `
toolchain: "/nonexistent/toolchain-binary"
alias: b: ["build"]
`)

	_, _, err := execKeel(t, policy.EnvConfig{}, "exec", "b", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
