package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keelbuild/keel/internal/policy"
)

func TestExitErrorCodes(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad config")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "stage failed")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain error")))
	assert.Equal(t, 101, GetExitCode(&ExitError{Code: 101, Message: "toolchain exit"}))
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := WrapExitError(ExitCommandError, "outer", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "outer")
	assert.Contains(t, err.Error(), "inner")
}

func TestFormatErrorBacktrace(t *testing.T) {
	inner := fmt.Errorf("root cause")
	mid := fmt.Errorf("middle: %w", inner)
	outer := WrapExitError(ExitCommandError, "outer", mid)

	plain := FormatError(outer, false)
	assert.NotContains(t, plain, "caused by")

	full := FormatError(outer, true)
	assert.Contains(t, full, "caused by: middle: root cause")
	assert.Contains(t, full, "caused by: root cause")
}

func TestFormatErrorNil(t *testing.T) {
	assert.Equal(t, "", FormatError(nil, true))
}

func TestColorizeOnlyWhenForced(t *testing.T) {
	plain := &OutputFormatter{Env: policy.EnvConfig{ForceColor: false}}
	assert.Equal(t, "ok", plain.Colorize("ok", ansiGreen))

	forced := &OutputFormatter{Env: policy.EnvConfig{ForceColor: true}}
	assert.Equal(t, ansiGreen+"ok"+ansiReset, forced.Colorize("ok", ansiGreen))
}

func TestFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"alias_count": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestFormatterErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("E005", "policy directory not found", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
}

func TestFormatterVerboseLogGoesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}

	f.VerboseLog("warning: %s", "something")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "warning: something")
}

func TestFormatterVerboseLogSilentWhenNotVerbose(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Writer: &out, Verbose: false}

	f.VerboseLog("hidden")
	assert.Empty(t, out.String())
}
