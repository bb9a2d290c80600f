/*
PURPOSE:
  Defines the 'config' subcommand.
  Prints the configuration a 'run' would use.

ARCHITECTURE INTEGRATION:
  - Calls: loadRunConfig() in run.go
  - Uses: github.com/k0kubun/pp

USAGE:
  NPU_BENCH_BACKEND=CPU npu-bench config --no-color
*/

package cli

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

var noColor bool

// configCmd prints the configuration a 'run' would use, after env overrides
// and path resolution.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(runViper)
		if err != nil {
			return err
		}
		pp.ColoringEnabled = !noColor
		_, err = pp.Fprintln(cmd.OutOrStdout(), cfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}
