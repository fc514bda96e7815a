package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpandCommand verifies placeholder substitution and posargs
// splicing.
func TestExpandCommand(t *testing.T) {
	sub := Substitutions{
		EnvTmpDir: "/proj/.qamatrix/py38/tmp",
		EnvPython: "/proj/.qamatrix/py38/venv/bin/python",
		EnvName:   "py38",
		PosArgs:   []string{"-k", "smoke"},
	}

	argv, err := ExpandCommand("pytest --basetemp={envtmpdir} {posargs}", sub)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pytest",
		"--basetemp=/proj/.qamatrix/py38/tmp",
		"-k", "smoke",
	}, argv)
}

// TestExpandCommand_EmptyPosargs verifies {posargs} disappears cleanly
// when no pass-through arguments are given.
func TestExpandCommand_EmptyPosargs(t *testing.T) {
	argv, err := ExpandCommand("pytest {posargs}", Substitutions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest"}, argv)
}

// TestExpandCommand_AllPlaceholders verifies every supported placeholder.
func TestExpandCommand_AllPlaceholders(t *testing.T) {
	sub := Substitutions{
		EnvTmpDir: "/tmp/x",
		EnvPython: "/venv/bin/python",
		EnvName:   "py27",
	}

	argv, err := ExpandCommand("{envpython} -m pytest --tmp={envtmpdir} --name={envname}", sub)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/venv/bin/python", "-m", "pytest", "--tmp=/tmp/x", "--name=py27",
	}, argv)
}

// TestExpandCommand_Errors verifies configuration errors are reported
// instead of silently producing a broken command.
func TestExpandCommand_Errors(t *testing.T) {
	_, err := ExpandCommand("", Substitutions{})
	assert.Error(t, err)

	_, err = ExpandCommand("pytest {unknown}", Substitutions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{unknown}")

	_, err = ExpandCommand("pytest --args={posargs}", Substitutions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posargs")
}
