// Package cli implements the cobra-based CLI commands for qamatrix.
//
// Each subcommand (run, lint, coverage, envs, config, clean) is defined
// in its own file within this package. This file defines the root
// command that serves as the parent for all subcommands and handles
// global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/config"
	"github.com/mmr-tortoise/qamatrix/internal/model"
	"github.com/mmr-tortoise/qamatrix/internal/project"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine
	// consumption. When false (default), output is human-readable text.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to
	// stderr.
	verbose bool

	// configPath overrides configuration file discovery with an explicit
	// path.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g. "0.4.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action; it only provides
// help text and global flags. Actual functionality is provided by
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qamatrix",
		Short: "QA policy runner for Python projects",
		Long: `qamatrix loads a project's declarative QA policies: coverage accounting,
line-length lint, test-run defaults, and a multi-interpreter test matrix,
and applies them.

The matrix runner creates one isolated environment per declared interpreter
(a virtual environment on the host, or a container with --isolation
container), installs the project with its extras, and runs the configured
test command in each, reporting an aggregate result.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when the --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands, so global flags
	// need no re-declaration per command.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (default: discovered)")

	// Register subcommands. Each subcommand is defined in its own file
	// and returns a *cobra.Command.
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewCoverageCommand())
	rootCmd.AddCommand(NewEnvsCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them into
// appropriate OS exit codes. CLIError types carry their own exit codes;
// other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. This is used throughout the CLI for debug/trace output.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// loadProject resolves the project root from the working directory and
// loads and validates its configuration. Most subcommands start here.
func loadProject() (string, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	root, err := project.Root(cwd)
	if err != nil {
		return "", nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}
	VerboseLog("Project root: %s", root)

	cfg, err := config.LoadForProject(root, configPath)
	if err != nil {
		return "", nil, err
	}
	VerboseLog("Configuration: %s", cfg.Path)

	if err := config.Validate(cfg, Version); err != nil {
		return "", nil, err
	}

	return root, cfg, nil
}
