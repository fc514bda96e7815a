package interp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExecutable verifies the env-name to interpreter-name mapping.
func TestExecutable(t *testing.T) {
	tests := []struct {
		envName  string
		expected string
	}{
		{"py27", "python2.7"},
		{"py35", "python3.5"},
		{"py38", "python3.8"},
		{"py310", "python3.10"},
		{"py3.13", "python3.13"},
		{"py3", "python3"},
		{"py2", "python2"},
		{"pypy", "pypy"},
		{"pypy3", "pypy3"},
		{"jython", "jython"},  // unrecognized shorthand passes through
		{"python3", "python3"},
	}

	for _, tt := range tests {
		t.Run(tt.envName, func(t *testing.T) {
			assert.Equal(t, tt.expected, Executable(tt.envName))
		})
	}
}

// fakeLookup builds a lookup function that knows only the given commands.
func fakeLookup(known map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if path, ok := known[file]; ok {
			return path, nil
		}
		return "", fmt.Errorf("executable file not found in $PATH")
	}
}

// TestResolver_Resolve verifies the probe result for a known interpreter.
func TestResolver_Resolve(t *testing.T) {
	r := NewResolverWithLookup(fakeLookup(map[string]string{
		"python3.8": "/usr/bin/python3.8",
	}))

	got, err := r.Resolve("py38")
	require.NoError(t, err)
	assert.Equal(t, "py38", got.EnvName)
	assert.Equal(t, "python3.8", got.Executable)
	assert.Equal(t, "/usr/bin/python3.8", got.Path)
}

// TestResolver_Missing verifies the error names both the environment and
// the executable, so the orchestrator's skip messages are informative.
func TestResolver_Missing(t *testing.T) {
	r := NewResolverWithLookup(fakeLookup(nil))

	_, err := r.Resolve("py27")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "py27")
	assert.Contains(t, err.Error(), "python2.7")
}
