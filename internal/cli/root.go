/*
PURPOSE:
  Defines the root Cobra command for the npu-bench CLI.
  Handles global flags and logger setup.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Logging must be configured before any subcommand runs.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/npu-bench/main.go
  - Calls: Child commands (run, parse, config)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands.

RELATED FILES:
  - cmd/npu-bench/main.go
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/npu-bench/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "npu-bench",
		Short: "Prefill/decode benchmark for on-device LLM runners over adb",
		Long: `npu-bench feeds a fixed question set to an on-device inference runner,
scrapes prompt-eval (prefill) and eval (decode) timings from its output and
records one CSV row per question. Use 'run --help' for benchmark options.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.Setup(logLevel, logFormat)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./npu-bench.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
}
