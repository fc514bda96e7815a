package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMatrixResult_Succeeded verifies the aggregate success rule:
// success is the logical AND of all non-skipped environments.
func TestMatrixResult_Succeeded(t *testing.T) {
	tests := []struct {
		name     string
		statuses []EnvStatus
		expected bool
	}{
		{"all passed", []EnvStatus{StatusPassed, StatusPassed}, true},
		{"one failed", []EnvStatus{StatusPassed, StatusFailed, StatusPassed}, false},
		{"skipped ignored", []EnvStatus{StatusSkipped, StatusPassed}, true},
		{"all skipped", []EnvStatus{StatusSkipped, StatusSkipped}, true},
		{"error counts as failure", []EnvStatus{StatusPassed, StatusError}, false},
		{"incomplete counts as failure", []EnvStatus{StatusPassed, StatusIncomplete}, false},
		{"empty run", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &MatrixResult{}
			for i, s := range tt.statuses {
				result.Results = append(result.Results, EnvResult{
					Name:   "env" + string(rune('a'+i)),
					Status: s,
				})
			}
			assert.Equal(t, tt.expected, result.Succeeded())
		})
	}
}

// TestMatrixResult_Counts verifies the passed/failed/skipped tally used
// by the run summary output.
func TestMatrixResult_Counts(t *testing.T) {
	result := &MatrixResult{Results: []EnvResult{
		{Name: "py27", Status: StatusSkipped},
		{Name: "py35", Status: StatusPassed},
		{Name: "py36", Status: StatusFailed},
		{Name: "py37", Status: StatusError},
		{Name: "py38", Status: StatusPassed},
	}}

	passed, failed, skipped := result.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, skipped)
}

// TestEnvStatus_Succeeded verifies that only passed counts as success.
func TestEnvStatus_Succeeded(t *testing.T) {
	assert.True(t, StatusPassed.Succeeded())
	assert.False(t, StatusFailed.Succeeded())
	assert.False(t, StatusSkipped.Succeeded())
	assert.False(t, StatusError.Succeeded())
	assert.False(t, StatusIncomplete.Succeeded())
}

// TestLintViolation_String verifies the path:line output format.
func TestLintViolation_String(t *testing.T) {
	v := LintViolation{Path: "corpman.py", Line: 42, Length: 131, Limit: 110}
	assert.Equal(t, "corpman.py:42: line too long (131 > 110 characters)", v.String())
}
