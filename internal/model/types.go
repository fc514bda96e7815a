// Package model defines the domain types for the qamatrix CLI.
//
// The four policy records mirror the four declarative documents a Python
// project's QA setup is made of: coverage accounting, line-length lint,
// test-run defaults, and the multi-environment test matrix. Each record is
// a flat mapping from option name to value, built once at config load time
// and treated as read-only afterwards.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// CoveragePolicy declares which source lines count toward coverage
// accounting.
//
// A file whose path matches any Omit glob is excluded entirely. Otherwise
// a line is excluded when its trimmed text contains any ExcludeLines
// marker as a literal substring (e.g. "pragma: no cover"). Unmatched
// patterns are no-ops, not errors.
type CoveragePolicy struct {
	// ExcludeLines holds literal marker substrings. A source line whose
	// trimmed text contains any marker does not count toward coverage.
	ExcludeLines []string `json:"excludeLines" yaml:"excludeLines"`

	// Omit holds shell-style path globs. A file matching any glob is
	// excluded from coverage accounting entirely, regardless of its
	// line contents.
	Omit []string `json:"omit" yaml:"omit"`
}

// LintPolicy declares the single style rule in scope: maximum line length.
//
// Files matching any Exclude glob are skipped entirely. In a non-excluded
// file, every line strictly longer than MaxLineLength characters is one
// reportable violation.
type LintPolicy struct {
	// MaxLineLength is the inclusive character limit. A line of exactly
	// this length is fine; one character more is a violation.
	MaxLineLength int `json:"maxLineLength" yaml:"maxLineLength"`

	// Exclude holds shell-style path globs for files and directories the
	// checker must not visit.
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// TestRunPolicy declares how the test runner is invoked: the default
// argument list prepended to any user-supplied arguments, and the ordered
// warning filters applied during the run.
type TestRunPolicy struct {
	// DefaultArgs is prepended verbatim to user arguments. Duplicates are
	// not deduplicated; per runner convention the last occurrence wins.
	DefaultArgs []string `json:"defaultArgs" yaml:"defaultArgs"`

	// WarningFilters is matched top to bottom against each emitted
	// warning; the first matching filter's action is applied. Order is
	// therefore significant.
	WarningFilters []WarningFilter `json:"warningFilters" yaml:"warningFilters"`
}

// FilterAction is what a warning filter does with a matched warning.
// The action names follow the conventional warning-control vocabulary.
type FilterAction string

const (
	// ActionIgnore suppresses the matched warning entirely.
	ActionIgnore FilterAction = "ignore"

	// ActionError escalates the matched warning to a test failure.
	ActionError FilterAction = "error"

	// ActionAlways reports the warning every time it is emitted.
	ActionAlways FilterAction = "always"

	// ActionDefault reports the warning once per emitting location.
	ActionDefault FilterAction = "default"

	// ActionModule reports the warning once per emitting module.
	ActionModule FilterAction = "module"

	// ActionOnce reports the warning only the first time it is emitted.
	ActionOnce FilterAction = "once"
)

// String returns the string representation of the action.
// This satisfies fmt.Stringer for CLI output and logging.
func (a FilterAction) String() string {
	return string(a)
}

// IsValid checks whether the FilterAction is one of the predefined
// action names.
func (a FilterAction) IsValid() bool {
	switch a {
	case ActionIgnore, ActionError, ActionAlways, ActionDefault, ActionModule, ActionOnce:
		return true
	default:
		return false
	}
}

// ParseFilterAction converts a string to a FilterAction.
// Returns an error if the string does not match any valid action.
func ParseFilterAction(s string) (FilterAction, error) {
	action := FilterAction(strings.ToLower(s))
	if !action.IsValid() {
		return "", fmt.Errorf("invalid filter action: %q (valid: ignore, error, always, default, module, once)", s)
	}
	return action, nil
}

// WarningFilter is one rule in the ordered warning-filter list.
//
// Message and Module are regular expressions matched at the start of the
// warning's message and emitting module respectively (the warning-control
// convention). Category names the warning class exactly. Empty fields
// match everything.
type WarningFilter struct {
	Action   FilterAction `json:"action" yaml:"action"`
	Message  string       `json:"message,omitempty" yaml:"message,omitempty"`
	Category string       `json:"category,omitempty" yaml:"category,omitempty"`
	Module   string       `json:"module,omitempty" yaml:"module,omitempty"`
}

// Warning is a runtime-emitted warning record as matched against the
// filter list: the message text, the warning class name, and the module
// that emitted it.
type Warning struct {
	Message  string `json:"message" yaml:"message"`
	Category string `json:"category" yaml:"category"`
	Module   string `json:"module" yaml:"module"`
}

// EnvironmentMatrix declares the named test environments and how each is
// exercised: the command template run inside every environment, the
// optional dependency extras installed beforehand, and whether an
// unavailable interpreter skips its environment or fails the run.
type EnvironmentMatrix struct {
	// Environments is the ordered list of environment names
	// (e.g. "py27", "py38", "pypy3"). The orchestrator visits them in
	// exactly this order.
	Environments []string `json:"environments" yaml:"environments"`

	// CommandTemplate is the command run in each environment after
	// placeholder substitution ({envtmpdir}, {posargs}, {envpython},
	// {envname}).
	CommandTemplate string `json:"commandTemplate" yaml:"commandTemplate"`

	// Extras names the optional dependency groups installed alongside the
	// project before the command runs (pip install -e ".[extra,...]").
	Extras []string `json:"extras,omitempty" yaml:"extras,omitempty"`

	// MinToolVersion is the minimum qamatrix version this configuration
	// requires. An older binary refuses the config at load time.
	MinToolVersion string `json:"minToolVersion,omitempty" yaml:"minToolVersion,omitempty"`

	// SkipMissing controls what happens when an environment's interpreter
	// cannot be resolved on the host: true silently skips the environment,
	// false aborts the whole run.
	SkipMissing bool `json:"skipMissing" yaml:"skipMissing"`
}

// envNameRegex validates environment names: lowercase alphanumerics,
// optionally dot-separated (e.g. "py38", "pypy3", "py3.13").
var envNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[0-9]+)?$`)

// ValidateEnvName checks if the given name is a valid environment name.
// Valid names start with a lowercase letter and contain only lowercase
// alphanumerics, with an optional dotted version suffix.
func ValidateEnvName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if !envNameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: must be lowercase alphanumeric (e.g. py38, pypy3)", name)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigNotFound indicates no qamatrix configuration file was
	// found in the expected locations.
	ExitConfigNotFound ExitCode = 2

	// ExitConfigInvalid indicates the configuration file was found but
	// failed validation (bad glob, unknown action, version mismatch).
	ExitConfigInvalid ExitCode = 3

	// ExitInterpreterMissing indicates a declared environment's
	// interpreter could not be resolved and skipping is disabled.
	ExitInterpreterMissing ExitCode = 4

	// ExitMatrixFailed indicates at least one non-skipped environment's
	// command exited non-zero.
	ExitMatrixFailed ExitCode = 5

	// ExitLintViolations indicates the lint check found violations.
	ExitLintViolations ExitCode = 6

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// (container isolation only).
	ExitDockerNotRunning ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
