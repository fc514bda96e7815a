package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/lint"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// NewLintCommand creates the "lint" cobra command, which checks every
// non-excluded Python file in the project against the configured line
// length limit.
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check line lengths against the configured limit",
		Long: `Check every Python file in the project against the configured
maximum line length, skipping files matched by the exclusion globs.
A line violates the limit only when it is strictly longer than the
configured maximum.`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint()
		},
	}

	return cmd
}

func runLint() error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	checker, err := lint.NewChecker(cfg.Lint)
	if err != nil {
		// Load-time validation already compiled these globs, so this only
		// fires when the checker is built from an unvalidated policy.
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid lint policy", err)
	}

	violations, err := checker.CheckTree(root)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "lint check failed", err)
	}

	if IsJSONOutput() {
		printLintJSON(checker.Limit(), violations)
	} else {
		printLintText(checker.Limit(), violations)
	}

	if len(violations) > 0 {
		return model.NewCLIError(model.ExitLintViolations,
			fmt.Sprintf("%d line(s) exceed %d characters", len(violations), checker.Limit()))
	}
	return nil
}

func printLintJSON(limit int, violations []model.LintViolation) {
	// Emit an empty array rather than null when there is nothing to
	// report, so consumers can always iterate.
	if violations == nil {
		violations = []model.LintViolation{}
	}
	out := map[string]interface{}{
		"maxLineLength": limit,
		"violations":    violations,
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

func printLintText(limit int, violations []model.LintViolation) {
	if len(violations) == 0 {
		fmt.Printf("No lines exceed %d characters.\n", limit)
		return
	}
	for _, v := range violations {
		fmt.Println(v.String())
	}
}
