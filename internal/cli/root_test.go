package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/policy"
	"github.com/keelbuild/keel/internal/testutil"
)

// execKeel runs the root command with the given args, returning the
// captured stdout, stderr, and error.
func execKeel(t *testing.T, env policy.EnvConfig, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand(env)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writePolicy creates a temp policy dir with the given CUE source.
func writePolicy(t *testing.T, src string) string {
	t.Helper()
	return testutil.PolicyDir(t, src)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})
	require.NotNil(t, cmd)
	assert.Equal(t, "keel", cmd.Use)
	assert.Contains(t, cmd.Long, "vendored")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})
	commands := []string{"validate", "resolve", "lint-flags", "exec", "ci", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execKeel(t, policy.EnvConfig{}, "--format", "xml", "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCICommandFlags(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})
	ciCmd, _, err := cmd.Find([]string{"ci"})
	require.NoError(t, err)

	eventFlag := ciCmd.Flags().Lookup("event")
	require.NotNil(t, eventFlag)
	assert.Equal(t, "manual", eventFlag.DefValue)

	dbFlag := ciCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	for _, name := range []string{"db", "failed", "event", "run", "limit"} {
		require.NotNil(t, historyCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestExecCommandFlags(t *testing.T) {
	cmd := NewRootCommand(policy.EnvConfig{})
	execCmd, _, err := cmd.Find([]string{"exec"})
	require.NotNil(t, execCmd)
	require.NoError(t, err)

	lintFlag := execCmd.Flags().Lookup("lint-flags")
	require.NotNil(t, lintFlag)
	assert.Equal(t, "false", lintFlag.DefValue)
}
