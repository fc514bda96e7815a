package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/coverage"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// NewCoverageCommand creates the "coverage" cobra command, which reports
// how the coverage policy accounts for every Python file in the project:
// omitted files, exclude-marker lines, and measurable lines.
func NewCoverageCommand() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report coverage accounting for the project tree",
		Long: `Apply the configured coverage policy to every Python file in the
project and report the accounting: files omitted wholesale by the omit
globs, lines excluded by the exclude markers, and the measurable
remainder.`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(showFiles)
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "Show the per-file accounting breakdown")

	return cmd
}

func runCoverage(showFiles bool) error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	policy, err := coverage.NewPolicy(cfg.Coverage)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigInvalid, "invalid coverage policy", err)
	}

	acc, err := policy.Measure(root)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "coverage accounting failed", err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(acc, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printCoverageText(acc, showFiles)
	return nil
}

func printCoverageText(acc *coverage.Accounting, showFiles bool) {
	if showFiles {
		for _, f := range acc.Files {
			if f.Omitted {
				fmt.Printf("  %-40s omitted\n", f.Path)
				continue
			}
			fmt.Printf("  %-40s %d measurable, %d excluded\n", f.Path, f.Measurable, f.Excluded)
		}
		fmt.Println()
	}

	measurable, excluded, omitted := acc.Totals()
	fmt.Printf("Files:      %d (%d omitted)\n", len(acc.Files), omitted)
	fmt.Printf("Measurable: %d lines\n", measurable)
	fmt.Printf("Excluded:   %d lines\n", excluded)
}
