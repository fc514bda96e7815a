package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFilterAction_String verifies that FilterAction values produce the
// expected string representations for CLI output and JSON serialization.
func TestFilterAction_String(t *testing.T) {
	tests := []struct {
		action   FilterAction
		expected string
	}{
		{ActionIgnore, "ignore"},
		{ActionError, "error"},
		{ActionAlways, "always"},
		{ActionDefault, "default"},
		{ActionModule, "module"},
		{ActionOnce, "once"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.action.String())
		})
	}
}

// TestFilterAction_IsValid checks that only defined actions pass validation.
func TestFilterAction_IsValid(t *testing.T) {
	assert.True(t, ActionIgnore.IsValid())
	assert.True(t, ActionError.IsValid())
	assert.True(t, ActionOnce.IsValid())
	assert.False(t, FilterAction("suppress").IsValid())
	assert.False(t, FilterAction("").IsValid())
}

// TestParseFilterAction verifies string-to-action conversion,
// including case normalization and error cases.
func TestParseFilterAction(t *testing.T) {
	tests := []struct {
		input    string
		expected FilterAction
		hasError bool
	}{
		{"ignore", ActionIgnore, false},
		{"error", ActionError, false},
		{"Ignore", ActionIgnore, false}, // case insensitive
		{"ERROR", ActionError, false},   // case insensitive
		{"suppress", "", true},          // unknown value
		{"", "", true},                  // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseFilterAction(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestValidateEnvName checks environment name validation rules.
func TestValidateEnvName(t *testing.T) {
	valid := []string{"py27", "py35", "py38", "pypy3", "py3.13", "jython"}
	for _, name := range valid {
		t.Run("valid_"+name, func(t *testing.T) {
			assert.NoError(t, ValidateEnvName(name))
		})
	}

	invalid := []string{"", "Py38", "py 38", "38py", "py-38", "py38."}
	for _, name := range invalid {
		t.Run("invalid_"+name, func(t *testing.T) {
			assert.Error(t, ValidateEnvName(name))
		})
	}
}

// TestCLIError_Error verifies the error message format with and without
// an underlying error.
func TestCLIError_Error(t *testing.T) {
	plain := NewCLIError(ExitConfigNotFound, "no configuration file found")
	assert.Equal(t, "no configuration file found", plain.Error())
	assert.Equal(t, ExitConfigNotFound, plain.Code)

	underlying := errors.New("open qamatrix.json: no such file")
	wrapped := WrapCLIError(ExitConfigNotFound, "failed to load configuration", underlying)
	assert.Equal(t, "failed to load configuration: open qamatrix.json: no such file", wrapped.Error())
}

// TestCLIError_Unwrap verifies errors.Is works through CLIError wrapping.
func TestCLIError_Unwrap(t *testing.T) {
	underlying := errors.New("boom")
	wrapped := WrapCLIError(ExitGeneralError, "context", underlying)

	assert.True(t, errors.Is(wrapped, underlying))
	assert.Equal(t, underlying, wrapped.Unwrap())
}
