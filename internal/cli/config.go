package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/model"
	"github.com/mmr-tortoise/qamatrix/internal/testrun"
)

// NewConfigCommand creates the "config" cobra command, which prints the
// resolved configuration: the discovered file merged over the built-in
// defaults. Loading implies validation, so a clean exit also confirms
// the configuration is well-formed.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the effective configuration after merging the discovered file
over the built-in defaults. The configuration is validated as part of
loading, so this command doubles as a configuration check.`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}

	return cmd
}

func runConfig() error {
	_, cfg, err := loadProject()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if cfg.Path != "" {
		fmt.Printf("Configuration file: %s\n", cfg.Path)
	} else {
		fmt.Println("Configuration file: (built-in defaults)")
	}
	fmt.Println()

	fmt.Println("Coverage:")
	fmt.Printf("  exclude markers: %s\n", stringsOrNone(cfg.Coverage.ExcludeLines))
	fmt.Printf("  omit globs:      %s\n", stringsOrNone(cfg.Coverage.Omit))

	fmt.Println("Lint:")
	fmt.Printf("  max line length: %d\n", cfg.Lint.MaxLineLength)
	fmt.Printf("  exclude globs:   %s\n", stringsOrNone(cfg.Lint.Exclude))

	fmt.Println("Test run:")
	fmt.Printf("  default args:    %s\n", stringsOrNone(cfg.TestRun.DefaultArgs))
	if len(cfg.TestRun.WarningFilters) == 0 {
		fmt.Println("  warning filters: (none)")
	} else {
		fmt.Println("  warning filters:")
		for _, f := range cfg.TestRun.WarningFilters {
			fmt.Printf("    %s\n", testrun.PythonWarnings([]model.WarningFilter{f}))
		}
	}

	fmt.Println("Matrix:")
	fmt.Printf("  environments:    %s\n", stringsOrNone(cfg.Matrix.Environments))
	fmt.Printf("  command:         %s\n", cfg.Matrix.CommandTemplate)
	fmt.Printf("  extras:          %s\n", stringsOrNone(cfg.Matrix.Extras))
	fmt.Printf("  skip missing:    %t\n", cfg.Matrix.SkipMissing)
	if cfg.Matrix.MinToolVersion != "" {
		fmt.Printf("  min version:     %s\n", cfg.Matrix.MinToolVersion)
	}

	return nil
}

// stringsOrNone renders a list for the text report.
func stringsOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
