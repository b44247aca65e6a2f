// Package testutil provides shared fixtures for policy-driven tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// PolicyDir writes the given CUE source into a fresh temp directory and
// returns its path. The directory is cleaned up with the test.
func PolicyDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.cue"), []byte(src), 0o644))
	return dir
}

// VendorDir creates a temp directory shaped like a cargo vendor tree,
// with one versioned subdirectory per crate name.
func VendorDir(t *testing.T, crates ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, crate := range crates {
		require.NoError(t, os.Mkdir(filepath.Join(dir, crate+"-1.0.0"), 0o755))
	}
	return dir
}
