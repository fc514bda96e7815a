package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// assertConfigInvalid asserts the error is a CLIError carrying
// ExitConfigInvalid.
func assertConfigInvalid(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
}

// TestValidate_Defaults verifies the built-in defaults pass validation.
func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(Default(), "0.1.0"))
	assert.NoError(t, Validate(Default(), "dev"))
}

// TestValidate_BadGlobs verifies malformed patterns are caught at load
// time for all three pattern-carrying sections.
func TestValidate_BadGlobs(t *testing.T) {
	cfg := Default()
	cfg.Coverage.Omit = []string{"[oops"}
	assertConfigInvalid(t, Validate(cfg, "dev"))

	cfg = Default()
	cfg.Lint.Exclude = []string{"[oops"}
	assertConfigInvalid(t, Validate(cfg, "dev"))

	cfg = Default()
	cfg.TestRun.WarningFilters = []model.WarningFilter{
		{Action: model.ActionIgnore, Message: "(broken"},
	}
	assertConfigInvalid(t, Validate(cfg, "dev"))
}

// TestValidate_Matrix verifies environment list rules.
func TestValidate_Matrix(t *testing.T) {
	cfg := Default()
	cfg.Matrix.Environments = nil
	assertConfigInvalid(t, Validate(cfg, "dev"))

	cfg = Default()
	cfg.Matrix.Environments = []string{"py38", "Py39"}
	assertConfigInvalid(t, Validate(cfg, "dev"))

	cfg = Default()
	cfg.Matrix.Environments = []string{"py38", "py38"}
	assertConfigInvalid(t, Validate(cfg, "dev"))

	cfg = Default()
	cfg.Matrix.CommandTemplate = "   "
	assertConfigInvalid(t, Validate(cfg, "dev"))
}

// TestValidate_MinToolVersion verifies the version gate.
func TestValidate_MinToolVersion(t *testing.T) {
	cfg := Default()
	cfg.Matrix.MinToolVersion = "0.4.0"

	// Older binary is refused.
	assertConfigInvalid(t, Validate(cfg, "0.3.9"))

	// Equal and newer binaries pass.
	assert.NoError(t, Validate(cfg, "0.4.0"))
	assert.NoError(t, Validate(cfg, "0.4.1"))
	assert.NoError(t, Validate(cfg, "1.0"))

	// Development builds are never locked out.
	assert.NoError(t, Validate(cfg, "dev"))

	// Garbage minimum version is itself a config error.
	cfg.Matrix.MinToolVersion = "not.a.version"
	assertConfigInvalid(t, Validate(cfg, "1.0.0"))
}

// TestVersionAtLeast covers the comparison corner cases directly.
func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		have, want string
		expected   bool
	}{
		{"1.0.0", "0.9.9", true},
		{"0.9.9", "1.0.0", false},
		{"1.0", "1.0.0", true},      // missing components are zero
		{"v1.2.3", "1.2.3", true},   // leading v tolerated
		{"1.2.3-rc1", "1.2.3", true}, // pre-release suffix ignored
		{"dev", "99.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.have+"_vs_"+tt.want, func(t *testing.T) {
			ok, err := versionAtLeast(tt.have, tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}
