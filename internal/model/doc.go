// Package model defines the domain types and value objects for the
// qamatrix CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (CoveragePolicy, LintPolicy, TestRunPolicy, EnvironmentMatrix,
// EnvResult, etc.) are immutable for the duration of a run: they are built
// once at configuration load time and only read afterwards.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
