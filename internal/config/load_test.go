package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadSingleFile(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"policy.cue": `
toolchain: "cargo"
alias: v: "vendor --verbose"
`,
	})

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "cargo", p.Toolchain)
	assert.Contains(t, p.Aliases, "v")
}

func TestLoadMergesMultipleFiles(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"aliases.cue": `alias: v: "vendor"`,
		"lints.cue":   `lints: [{name: "unwrap-used", severity: "deny"}]`,
	})

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Contains(t, p.Aliases, "v")
	require.Len(t, p.Lints, 1)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "policy.cue")
	require.NoError(t, os.WriteFile(file, []byte(`alias: {}`), 0o644))

	_, err := Load(file)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadMalformedCUE(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"broken.cue": `alias: { v: `,
	})

	_, err := Load(dir)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoadCompileErrorCarriesCode(t *testing.T) {
	dir := writePolicyDir(t, map[string]string{
		"policy.cue": `lints: [{name: "x", severity: "fatal"}]`,
	})

	_, err := Load(dir)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeLints, loadErr.Code)
}

