package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/container"
	"github.com/mmr-tortoise/qamatrix/internal/matrix"
	"github.com/mmr-tortoise/qamatrix/internal/model"
	"github.com/mmr-tortoise/qamatrix/internal/project"
)

// NewCleanCommand creates the "clean" cobra command, which removes the
// per-environment scopes left under the project and, with --containers,
// any qamatrix-managed Docker containers left over from interrupted
// container-isolation runs.
func NewCleanCommand() *cobra.Command {
	var cleanContainers bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove environment scopes and leftover containers",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, cleanContainers)
		},
	}

	cmd.Flags().BoolVar(&cleanContainers, "containers", false, "Also remove qamatrix-managed Docker containers")

	return cmd
}

func runClean(cmd *cobra.Command, cleanContainers bool) error {
	// Clean works without a valid configuration on purpose: a broken
	// config file must not prevent removing the state it produced.
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	root, err := project.Root(cwd)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project root", err)
	}

	scopeRoot := filepath.Join(root, matrix.ScopeDirName)
	if _, statErr := os.Stat(scopeRoot); statErr == nil {
		if err := os.RemoveAll(scopeRoot); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to remove environment scopes", err)
		}
		fmt.Printf("Removed %s\n", scopeRoot)
	} else {
		VerboseLog("No environment scopes at %s", scopeRoot)
	}

	if !cleanContainers {
		return nil
	}

	cli, err := container.NewClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	removed, err := container.RemoveManaged(cmd.Context(), cli)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("removed %d container(s) before failing", removed), err)
	}
	if removed > 0 {
		fmt.Printf("Removed %d managed container(s)\n", removed)
	} else {
		VerboseLog("No managed containers found")
	}
	return nil
}
