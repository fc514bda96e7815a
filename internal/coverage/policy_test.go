package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// testPolicy builds a policy with the markers and omit globs used by
// most tests in this file.
func testPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(model.CoveragePolicy{
		ExcludeLines: []string{"pragma: no cover", "raise NotImplementedError"},
		Omit:         []string{"*/tests/*", "setup.py"},
	})
	require.NoError(t, err)
	return p
}

// TestPolicy_OmitsFile verifies file-level omission by glob.
func TestPolicy_OmitsFile(t *testing.T) {
	p := testPolicy(t)

	assert.True(t, p.OmitsFile("pkg/tests/helpers.py"))
	assert.True(t, p.OmitsFile("setup.py"))
	assert.False(t, p.OmitsFile("corpman.py"))
	assert.False(t, p.OmitsFile("pkg/loader.py"))
}

// TestPolicy_ExcludesLine verifies marker matching against trimmed text.
func TestPolicy_ExcludesLine(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		name     string
		line     string
		excluded bool
	}{
		{"bare marker", "pragma: no cover", true},
		{"marker in comment", "    return None  # pragma: no cover", true},
		{"indented marker", "\t\traise NotImplementedError()", true},
		{"ordinary code", "data = in_fp.read()", false},
		{"blank line", "", false},
		{"partial marker", "pragma: no", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.excluded, p.ExcludesLine(tt.line))
		})
	}
}

// TestPolicy_CountsTowardCoverage verifies the combined decision:
// omission wins over line content, then marker exclusion applies.
func TestPolicy_CountsTowardCoverage(t *testing.T) {
	p := testPolicy(t)

	// Omitted file: nothing counts, even perfectly ordinary lines.
	assert.False(t, p.CountsTowardCoverage("pkg/tests/x.py", "x = 1"))

	// Non-omitted file: markers decide.
	assert.False(t, p.CountsTowardCoverage("corpman.py", "x = 1  # pragma: no cover"))
	assert.True(t, p.CountsTowardCoverage("corpman.py", "x = 1"))
}

// TestNewPolicy_MalformedGlob verifies bad omit globs surface as
// load-time errors.
func TestNewPolicy_MalformedGlob(t *testing.T) {
	_, err := NewPolicy(model.CoveragePolicy{Omit: []string{"[oops"}})
	assert.Error(t, err)
}

// TestPolicy_Measure applies the policy to a small on-disk tree and
// checks the per-file accounting and totals.
func TestPolicy_Measure(t *testing.T) {
	root := t.TempDir()

	// A measurable module with one excluded line.
	writeFile(t, root, "corpman.py", "import os\nx = 1\nraise NotImplementedError\n")
	// An omitted file whose contents must never be inspected.
	writeFile(t, root, "setup.py", "from setuptools import setup\n")
	// A nested test file caught by */tests/*.
	writeFile(t, root, "pkg/tests/test_x.py", "assert True\n")
	// A non-Python file that should be ignored outright.
	writeFile(t, root, "README.md", "hello\n")

	p := testPolicy(t)
	acc, err := p.Measure(root)
	require.NoError(t, err)

	require.Len(t, acc.Files, 3)

	byPath := map[string]FileAccounting{}
	for _, f := range acc.Files {
		byPath[f.Path] = f
	}

	assert.Equal(t, 2, byPath["corpman.py"].Measurable)
	assert.Equal(t, 1, byPath["corpman.py"].Excluded)
	assert.True(t, byPath["setup.py"].Omitted)
	assert.True(t, byPath["pkg/tests/test_x.py"].Omitted)

	measurable, excluded, omitted := acc.Totals()
	assert.Equal(t, 2, measurable)
	assert.Equal(t, 1, excluded)
	assert.Equal(t, 2, omitted)
}

// writeFile creates a file (and parent directories) under root.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
