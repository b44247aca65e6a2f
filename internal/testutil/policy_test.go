package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDir(t *testing.T) {
	dir := PolicyDir(t, `toolchain: "cargo"`)

	data, err := os.ReadFile(filepath.Join(dir, "policy.cue"))
	require.NoError(t, err)
	assert.Equal(t, `toolchain: "cargo"`, string(data))
}

func TestVendorDir(t *testing.T) {
	dir := VendorDir(t, "serde", "tokio")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := []string{entries[0].Name(), entries[1].Name()}
	assert.Contains(t, names, "serde-1.0.0")
	assert.Contains(t, names, "tokio-1.0.0")
}
