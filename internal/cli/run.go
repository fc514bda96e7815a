// run.go implements the "qamatrix run" command.
//
// The run command is the primary operation: it drives the environment
// matrix, one isolated environment per declared interpreter, in declared
// order.
//
// Orchestration steps per environment:
//  1. Resolve the named interpreter (skip or fail per skipMissing)
//  2. Create a fresh isolated scope
//  3. Install the project in editable mode plus the declared extras
//  4. Substitute and execute the command template
//  5. Record the exit code and captured output
//
// The overall exit code is non-zero if any non-skipped environment
// failed.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/container"
	"github.com/mmr-tortoise/qamatrix/internal/interp"
	"github.com/mmr-tortoise/qamatrix/internal/matrix"
	"github.com/mmr-tortoise/qamatrix/internal/model"
	"github.com/mmr-tortoise/qamatrix/internal/testrun"
)

// runFlags holds the flag values for the run command.
// These are bound to cobra flags in NewRunCommand.
type runFlags struct {
	envs           []string // -e/--env: environment subset
	isolation      string   // --isolation: local or container
	skipMissing    bool     // --skip-missing: override the configured flag
	keepContainers bool     // --keep-containers: don't remove finished containers
}

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [-- test-runner-args...]",
		Short: "Run the test matrix across all declared environments",
		Long: `Run the configured test command in every declared environment, in
declared order. Arguments after "--" are passed through to the test
command via the {posargs} placeholder.

Examples:
  qamatrix run
  qamatrix run -e py38 -e py35
  qamatrix run --isolation container
  qamatrix run -- -k smoke -x`,

		// ArbitraryArgs lets everything after "--" through as posargs.
		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			// Only arguments after "--" are pass-through; anything else
			// positional is a usage error.
			posArgs := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				if dash > 0 {
					return model.NewCLIError(model.ExitGeneralError,
						fmt.Sprintf("unexpected argument %q (pass test-runner arguments after --)", args[0]))
				}
				posArgs = args[dash:]
			} else if len(args) > 0 {
				return model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("unexpected argument %q (pass test-runner arguments after --)", args[0]))
			}
			return runMatrix(cmd, posArgs, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.envs, "env", "e", nil, "Run only the named environment (repeatable)")
	cmd.Flags().StringVar(&flags.isolation, "isolation", "local", "Environment isolation: local (venv) or container (Docker)")
	cmd.Flags().BoolVar(&flags.skipMissing, "skip-missing", false, "Skip environments whose interpreter is unavailable")
	cmd.Flags().BoolVar(&flags.keepContainers, "keep-containers", false, "Keep finished containers for inspection (container isolation)")

	return cmd
}

// runMatrix is the main orchestration function for the run command.
func runMatrix(cmd *cobra.Command, posArgs []string, flags *runFlags) error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	// An interrupt should stop the matrix between commands and leave the
	// completed results intact; signal.NotifyContext cancels the context
	// the executors run under.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	resolver, executor, cleanup, err := buildExecutor(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	// The test-run policy's default arguments are prepended to the
	// user's pass-through arguments; the merged list is what {posargs}
	// expands to in every environment.
	opts := matrix.RunOptions{
		Envs:           flags.envs,
		PosArgs:        testrun.EffectiveArgs(cfg.TestRun.DefaultArgs, posArgs),
		PythonWarnings: testrun.PythonWarnings(cfg.TestRun.WarningFilters),
	}
	// Only treat --skip-missing as an override when the user actually
	// set it; otherwise the configured value stands.
	if cmd.Flags().Changed("skip-missing") {
		opts.SkipMissing = &flags.skipMissing
	}

	orch := matrix.NewOrchestrator(cfg.Matrix, root, resolver, executor, VerboseLog)
	result, runErr := orch.Run(ctx, opts)

	// Print whatever results exist even when the run was aborted, so an
	// interrupted matrix still shows what completed.
	printRunResult(result)

	if runErr != nil {
		if cliErr, ok := runErr.(*model.CLIError); ok {
			return cliErr
		}
		return model.WrapCLIError(model.ExitGeneralError, "matrix run aborted", runErr)
	}

	if !result.Succeeded() {
		_, failed, _ := result.Counts()
		return model.NewCLIError(model.ExitMatrixFailed,
			fmt.Sprintf("%d environment(s) failed", failed))
	}
	return nil
}

// buildExecutor constructs the resolver/executor pair for the selected
// isolation mode. The returned cleanup releases the Docker client for
// container isolation and is a no-op otherwise.
func buildExecutor(flags *runFlags) (*interp.Resolver, matrix.Executor, func(), error) {
	switch flags.isolation {
	case "local":
		return interp.NewResolver(), matrix.NewLocalExecutor(VerboseLog), func() {}, nil

	case "container":
		cli, err := container.NewClient()
		if err != nil {
			return nil, nil, nil, err
		}
		executor := container.NewExecutor(cli, VerboseLog)
		executor.KeepContainers = flags.keepContainers

		// Containers provide their own interpreters, so host PATH
		// resolution does not apply: an environment is resolvable iff an
		// official image exists for its interpreter.
		resolver := interp.NewResolverWithLookup(func(file string) (string, error) {
			if _, imgErr := container.ImageFor(file); imgErr != nil {
				return "", imgErr
			}
			return file, nil
		})
		return resolver, executor, func() { _ = cli.Close() }, nil

	default:
		return nil, nil, nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid isolation mode %q (valid: local, container)", flags.isolation))
	}
}

// printRunResult outputs the matrix results in text or JSON format.
func printRunResult(result *model.MatrixResult) {
	if result == nil {
		return
	}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}
	printRunResultText(result)
}

// printRunResultText renders the human-readable per-environment summary,
// echoing each failed environment's output so failures are diagnosable
// without re-running.
func printRunResultText(result *model.MatrixResult) {
	for _, r := range result.Results {
		fmt.Println(formatEnvLine(r))

		// Failed and errored environments get their output echoed.
		if r.Status == model.StatusFailed && r.Output != "" {
			fmt.Println(indent(strings.TrimRight(r.Output, "\n"), "    "))
		}
		if (r.Status == model.StatusError || r.Status == model.StatusIncomplete) && r.Reason != "" {
			fmt.Println(indent(r.Reason, "    "))
		}
	}

	passed, failed, skipped := result.Counts()
	fmt.Println()
	fmt.Printf("Summary: %d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

// formatEnvLine renders one environment's one-line summary.
func formatEnvLine(r model.EnvResult) string {
	switch r.Status {
	case model.StatusSkipped:
		return fmt.Sprintf("  %-8s SKIP  (%s)", r.Name, r.Reason)
	case model.StatusPassed:
		return fmt.Sprintf("  %-8s OK    (%s)", r.Name, formatDuration(r.Duration))
	case model.StatusFailed:
		return fmt.Sprintf("  %-8s FAIL  (exit code %d, %s)", r.Name, r.ExitCode, formatDuration(r.Duration))
	case model.StatusIncomplete:
		return fmt.Sprintf("  %-8s INTERRUPTED", r.Name)
	default:
		return fmt.Sprintf("  %-8s ERROR", r.Name)
	}
}

// formatDuration rounds durations to a human-friendly precision:
// sub-second runs keep milliseconds, longer ones round to 100ms.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// indent prefixes every line of s with the given prefix.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
