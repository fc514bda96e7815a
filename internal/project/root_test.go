package project

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTestGit runs a git command in dir, failing the test on error.
func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
}

// TestRoot_GitRepository verifies git checkouts resolve to the repo
// top-level, even from a subdirectory.
func TestRoot_GitRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runTestGit(t, dir, "init")

	sub := filepath.Join(dir, "pkg", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := Root(sub)
	require.NoError(t, err)

	// TempDir may be a symlink (macOS); compare resolved paths.
	wantResolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, wantResolved, gotResolved)
}

// TestRoot_MarkerFile verifies the marker-file fallback outside git.
func TestRoot_MarkerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.py"), []byte("from setuptools import setup\n"), 0o644))

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := Root(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

// TestRoot_Fallback verifies a bare directory resolves to itself.
func TestRoot_Fallback(t *testing.T) {
	dir := t.TempDir()

	root, err := Root(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}
