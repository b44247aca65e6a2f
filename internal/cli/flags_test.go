package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/policy"
)

func TestLintFlagsCommand(t *testing.T) {
	dir := writePolicy(t, `
lints: [
	{name: "wildcard-dependency", severity: "deny"},
	{name: "unwrap-used", severity: "deny"},
	{name: "negative-feature-names", severity: "warn"},
]
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "lint-flags", dir)
	require.NoError(t, err)
	assert.Equal(t, "--deny=wildcard-dependency --deny=unwrap-used --warn=negative-feature-names\n", stdout)
}

func TestLintFlagsJSON(t *testing.T) {
	dir := writePolicy(t, `
lints: [
	{name: "unwrap-used", severity: "warn"},
	{name: "unwrap-used", severity: "deny"},
]
`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "--format", "json", "lint-flags", dir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	data := resp.Data.(map[string]any)

	flags := data["flags"].([]any)
	require.Len(t, flags, 1)
	assert.Equal(t, "--deny=unwrap-used", flags[0])

	overrides := data["overrides"].([]any)
	assert.Len(t, overrides, 1)
}

func TestLintFlagsEmptyPolicy(t *testing.T) {
	dir := writePolicy(t, `alias: {}`)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "lint-flags", dir)
	require.NoError(t, err)
	assert.Equal(t, "\n", stdout)
}
