package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_Match exercises the wildcard semantics: "*" must cross
// path separators, "?" matches exactly one character, and everything
// else is literal.
func TestCompile_Match(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		matches bool
	}{
		// "*" crosses separators.
		{"*/tests/*", "pkg/tests/helpers.py", true},
		{"*/tests/*", "a/b/tests/c/d.py", true},
		{"*/tests/*", "tests/helpers.py", false}, // needs a leading segment
		{"*_test.py", "pkg/sub/unit_test.py", true},

		// Literal patterns match exactly.
		{"setup.py", "setup.py", true},
		{"setup.py", "pkg/setup.py", false},

		// "?" matches a single character.
		{"py3?", "py38", true},
		{"py3?", "py3", false},
		{"py3?", "py381", false},

		// Character classes, including both negation spellings.
		{"py3[5-8]", "py36", true},
		{"py3[5-8]", "py39", false},
		{"py3[!5-8]", "py39", true},
		{"py3[!5-8]", "py36", false},
		{"py3[!5-8]", "py3!", true},
		{"py3[^5-8]", "py39", true},

		// Regex metacharacters in the pattern are literal.
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, p.Match(tt.path),
				"pattern %q vs path %q", tt.pattern, tt.path)
		})
	}
}

// TestCompile_Malformed verifies malformed patterns fail at compile time
// rather than silently matching nothing.
func TestCompile_Malformed(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)

	_, err = Compile("src/[abc")
	assert.Error(t, err, "unterminated character class should be a compile error")
}

// TestCompile_BackslashPaths verifies backslash separators are rewritten
// before matching on every platform, not just where the OS separator is
// a backslash, so the same patterns work cross-platform.
func TestCompile_BackslashPaths(t *testing.T) {
	p, err := Compile("*/tests/*")
	require.NoError(t, err)
	assert.True(t, p.Match(`pkg\tests\helpers.py`))
	assert.True(t, p.Match(`pkg\tests/helpers.py`), "mixed separators normalize too")

	literal, err := Compile("setup.py")
	require.NoError(t, err)
	assert.False(t, literal.Match(`pkg\setup.py`), "normalized separator still separates")
}

// TestSet_Match verifies set membership is the OR over its patterns and
// that the empty set matches nothing.
func TestSet_Match(t *testing.T) {
	set, err := CompileSet([]string{"*/tests/*", "setup.py"})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	assert.True(t, set.Match("pkg/tests/x.py"))
	assert.True(t, set.Match("setup.py"))
	assert.False(t, set.Match("corpman.py"))

	empty := &Set{}
	assert.False(t, empty.Match("anything"))
}

// TestCompileSet_PropagatesError verifies the first malformed pattern
// aborts set compilation.
func TestCompileSet_PropagatesError(t *testing.T) {
	_, err := CompileSet([]string{"ok*", "[broken"})
	assert.Error(t, err)
}
