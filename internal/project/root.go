// Package project locates the root of the Python project under test.
//
// Every command needs a project root: the lint and coverage policies
// walk it, and the matrix orchestrator installs from it. Resolution
// shells out to `git rev-parse --show-toplevel` first (the common case
// of a checked-out repository), then falls back to walking up from the
// starting directory looking for packaging marker files.
//
// We shell out to the git CLI rather than using a Go Git library because
// only one trivial query is needed and the CLI is universally present
// where git repositories are.
package project

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// markerFiles are the files whose presence identifies a Python project
// root when the directory is not a git checkout. Checked in order.
var markerFiles = []string{
	"pyproject.toml",
	"setup.py",
	"setup.cfg",
	"qamatrix.json",
	"qamatrix.yaml",
}

// Root resolves the project root for the given starting directory.
//
// Resolution order:
//  1. `git rev-parse --show-toplevel` from the starting directory
//  2. the nearest ancestor (starting directory included) containing a
//     packaging marker file
//  3. the starting directory itself, as a last resort
//
// The returned path is absolute.
func Root(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	if root, gitErr := gitTopLevel(abs); gitErr == nil {
		return root, nil
	}

	dir := abs
	for {
		for _, marker := range markerFiles {
			if info, statErr := os.Stat(filepath.Join(dir, marker)); statErr == nil && !info.IsDir() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return abs, nil
}

// gitTopLevel runs `git rev-parse --show-toplevel` in the given
// directory. The -C flag makes git operate there without changing this
// process's working directory.
func gitTopLevel(dir string) (string, error) {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel")

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("git rev-parse failed: %s: %w", stderrStr, err)
		}
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
