package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/policy"
)

// recordRuns executes one succeeding and one failing pipeline against
// dbPath and returns the failing run's token.
func recordRuns(t *testing.T, dbPath string) string {
	t.Helper()

	good := writePolicy(t, `
toolchain: "sh"
alias: ok: ["-c", "'true'"]
pipeline: stages: [{name: "build", alias: "ok"}]
`)
	_, _, err := execKeel(t, policy.EnvConfig{}, "ci", good, "--db", dbPath, "--event", "push")
	require.NoError(t, err)

	bad := writePolicy(t, `
toolchain: "sh"
alias: bad: ["-c", "'exit 2'"]
pipeline: stages: [{name: "test", alias: "bad"}]
`)
	stdout, _, err := execKeel(t, policy.EnvConfig{}, "--format", "json", "ci", bad, "--db", dbPath, "--event", "merge-request")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	return resp.Data.(map[string]any)["run_token"].(string)
}

func TestHistoryListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "succeeded")
	assert.Contains(t, stdout, "failed at test: exit code 2")
}

func TestHistoryFailedFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath, "--failed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "failed")
	assert.NotContains(t, stdout, "succeeded")
}

func TestHistoryEventFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath, "--event", "push")
	require.NoError(t, err)
	assert.Contains(t, stdout, "push")
	assert.NotContains(t, stdout, "merge-request")
}

func TestHistoryLimit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "--format", "json", "history", "--db", dbPath, "--limit", "1")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	runs := resp.Data.([]any)
	require.Len(t, runs, 1)

	// Tokens are time-ordered, so the single result is the newest run.
	newest := runs[0].(map[string]any)
	assert.Equal(t, "failed", newest["outcome"])
}

func TestHistoryRunDetail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	token := recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath, "--run", token)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run "+token)
	assert.Contains(t, stdout, "failed (exit code 2)")
}

func TestHistoryRunDetailJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	token := recordRuns(t, dbPath)

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "--format", "json", "history", "--db", dbPath, "--run", token)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	data := resp.Data.(map[string]any)

	run := data["run"].(map[string]any)
	assert.Equal(t, token, run["run_token"])
	stages := data["stages"].([]any)
	require.Len(t, stages, 1)
}

func TestHistoryUnknownRunToken(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")
	recordRuns(t, dbPath)

	_, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath, "--run", "no-such-token")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `"no-such-token"`)
}

func TestHistoryEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "keel.db")

	stdout, _, err := execKeel(t, policy.EnvConfig{}, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "no runs recorded\n", stdout)
}
