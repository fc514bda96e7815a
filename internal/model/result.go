// result.go defines the per-environment and aggregate result types
// produced by a matrix run, plus the lint violation record.
package model

import (
	"fmt"
	"time"
)

// EnvStatus represents the outcome of a single environment's run.
// The lifecycle is:
//
//	[resolved] → passed | failed | error
//	[unresolved interpreter + skipMissing] → skipped
//	[interrupted mid-run] → incomplete
type EnvStatus string

const (
	// StatusPassed indicates the environment's command exited zero.
	StatusPassed EnvStatus = "passed"

	// StatusFailed indicates the environment's command exited non-zero.
	StatusFailed EnvStatus = "failed"

	// StatusSkipped indicates the environment's interpreter was
	// unavailable and skipping is enabled. Skipped environments do not
	// participate in the aggregate result.
	StatusSkipped EnvStatus = "skipped"

	// StatusError indicates environment setup (scope creation or
	// installation) failed before the command could run.
	StatusError EnvStatus = "error"

	// StatusIncomplete indicates the run was interrupted while this
	// environment was in progress. Earlier environments keep their
	// recorded results.
	StatusIncomplete EnvStatus = "incomplete"
)

// String returns the string representation of EnvStatus.
func (s EnvStatus) String() string {
	return string(s)
}

// IsValid checks whether the EnvStatus value is one of the predefined
// valid states.
func (s EnvStatus) IsValid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped, StatusError, StatusIncomplete:
		return true
	default:
		return false
	}
}

// Succeeded reports whether this status counts as a success for the
// aggregate result. Skipped environments are neutral and handled by the
// caller; only passed counts as success here.
func (s EnvStatus) Succeeded() bool {
	return s == StatusPassed
}

// EnvResult records the outcome of one environment in the matrix.
// Results are appended in visit order, so the slice order in MatrixResult
// matches the declared environment order (minus nothing; skipped
// environments are recorded too, marked StatusSkipped).
type EnvResult struct {
	// Name is the declared environment name (e.g. "py38").
	Name string `json:"name"`

	// Status is the environment's outcome.
	Status EnvStatus `json:"status"`

	// ExitCode is the command's exit code. Zero for skipped environments.
	ExitCode int `json:"exitCode"`

	// Interpreter is the resolved interpreter executable path.
	// Empty for skipped environments.
	Interpreter string `json:"interpreter,omitempty"`

	// Command is the fully substituted command line that was executed.
	Command string `json:"command,omitempty"`

	// Output is the combined stdout/stderr captured from the command.
	Output string `json:"output,omitempty"`

	// Reason explains skipped/error statuses in human terms.
	Reason string `json:"reason,omitempty"`

	// Duration is the wall-clock time the environment took, including
	// scope creation and installation.
	Duration time.Duration `json:"duration"`
}

// MatrixResult aggregates the per-environment results of one matrix run.
type MatrixResult struct {
	// Results holds one entry per declared environment, in visit order.
	Results []EnvResult `json:"results"`
}

// Succeeded reports the overall outcome: true iff every non-skipped
// environment passed. A run where every environment was skipped is
// considered successful (there is nothing that failed).
func (m *MatrixResult) Succeeded() bool {
	for _, r := range m.Results {
		if r.Status == StatusSkipped {
			continue
		}
		if !r.Status.Succeeded() {
			return false
		}
	}
	return true
}

// Counts returns the number of passed, failed and skipped environments.
// Error and incomplete statuses count as failed, since they prevent the
// run from succeeding.
func (m *MatrixResult) Counts() (passed, failed, skipped int) {
	for _, r := range m.Results {
		switch r.Status {
		case StatusPassed:
			passed++
		case StatusSkipped:
			skipped++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}

// LintViolation records one line exceeding the configured length limit.
type LintViolation struct {
	// Path is the file path relative to the checked root.
	Path string `json:"path"`

	// Line is the 1-based line number of the violation.
	Line int `json:"line"`

	// Length is the measured character length of the line.
	Length int `json:"length"`

	// Limit is the configured maximum line length at the time of the check.
	Limit int `json:"limit"`
}

// String formats the violation in the conventional path:line style used
// by line-oriented checkers, so editors can jump to the location.
func (v LintViolation) String() string {
	return fmt.Sprintf("%s:%d: line too long (%d > %d characters)", v.Path, v.Line, v.Length, v.Limit)
}
