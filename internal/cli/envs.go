package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qamatrix/internal/interp"
)

// envInfo is the per-environment row reported by the envs command.
type envInfo struct {
	Name       string `json:"name"`
	Executable string `json:"executable"`
	Path       string `json:"path,omitempty"`
	Available  bool   `json:"available"`
}

// NewEnvsCommand creates the "envs" cobra command, which lists the
// declared environments in declared order together with the interpreter
// each would resolve to and whether it is available on the host PATH.
func NewEnvsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envs",
		Short: "List declared environments and interpreter availability",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvs()
		},
	}

	return cmd
}

func runEnvs() error {
	_, cfg, err := loadProject()
	if err != nil {
		return err
	}

	resolver := interp.NewResolver()
	infos := make([]envInfo, 0, len(cfg.Matrix.Environments))
	for _, name := range cfg.Matrix.Environments {
		info := envInfo{
			Name:       name,
			Executable: interp.Executable(name),
		}
		if ip, resolveErr := resolver.Resolve(name); resolveErr == nil {
			info.Available = true
			info.Path = ip.Path
		}
		infos = append(infos, info)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(infos, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, info := range infos {
		if info.Available {
			fmt.Printf("  %-8s %-12s %s\n", info.Name, info.Executable, info.Path)
		} else {
			fmt.Printf("  %-8s %-12s (not found)\n", info.Name, info.Executable)
		}
	}
	return nil
}
