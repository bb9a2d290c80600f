/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes one benchmark run over the whole dataset.

REQUIREMENTS:
  User-specified:
  - Run the benchmark.
  - Flags for overriding any config value.

  Implementation-discovered:
  - Need to load config first, then apply flag and NPU_BENCH_* env
    overrides, then resolve paths against the project root.
  - Ctrl-C stops the run between questions; completed rows are kept.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, github.com/spf13/viper

ERROR HANDLING:
  - Returns error if config load/validation fails or the run aborts.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Resolve -> Validate -> engine.Run.

USAGE:
  npu-bench run --model Qwen2.5-0.5B-Q4_0.gguf --cooldown 3s

RELATED FILES:
  - internal/cli/root.go
*/

package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/daryltucker/npu-bench/internal/config"
	"github.com/daryltucker/npu-bench/internal/engine"
)

// EnvPrefix prefixes environment overrides, e.g. NPU_BENCH_MODEL.
const EnvPrefix = "NPU_BENCH"

var runViper *viper.Viper

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark",
	Long: `Runs every question of the dataset through the on-device runner, one at a time:
1. Staging: the prompt is written to a local file and pushed to the device
   (file mode), or passed on the command line (inline mode).
2. Inference: the runner script is invoked with the model and backend selected
   through environment variables.
3. Extraction: prompt-eval (prefill) and eval (decode) timings are scraped from
   the runner output; anything missing is recorded as N/A.

The CSV report is rewritten from scratch on every run. Every flag can also be
set through the environment, e.g. NPU_BENCH_MODEL or NPU_BENCH_COOLDOWN.`,
	Example: `  # Run with defaults (uses ./npu-bench.yaml if present)
  npu-bench run

  # Different model on the CPU backend, longer cooldown
  npu-bench run --model Qwen2.5-0.5B-Q4_0.gguf --backend CPU --cooldown 3s

  # Inline prompts, question column in the report, no raw log
  npu-bench run --mode inline --report-format question --raw-log ""`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(runViper)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = engine.Run(ctx, cfg, engine.Options{Stdout: cmd.OutOrStdout()})
		return err
	},
}

// loadRunConfig loads the config file and applies overrides from v.
func loadRunConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, v)
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunViper(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	return v
}

// applyOverrides copies every flag or env value that was explicitly set.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	strs := map[string]*string{
		"project-root":   &cfg.ProjectRoot,
		"dataset":        &cfg.Dataset,
		"model":          &cfg.Model,
		"backend":        &cfg.Backend,
		"report":         &cfg.Report,
		"report-format":  &cfg.ReportFormat,
		"raw-log":        &cfg.RawLog,
		"json-report":    &cfg.JSONReport,
		"metrics-file":   &cfg.MetricsFile,
		"runner":         &cfg.Runner,
		"mode":           &cfg.Mode,
		"bridge-command": &cfg.BridgeCommand,
		"remote-prompt":  &cfg.RemotePromptPath,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	if v.IsSet("max-tokens") {
		cfg.MaxTokens = v.GetInt("max-tokens")
	}
	if v.IsSet("repeat-penalty") {
		cfg.RepeatPenalty = v.GetFloat64("repeat-penalty")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("cooldown") {
		cfg.Cooldown = v.GetDuration("cooldown")
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	defineRunFlags(runCmd.Flags())
	runViper = newRunViper(runCmd.Flags())
}

func defineRunFlags(f *pflag.FlagSet) {
	f.String("project-root", "", "Base directory for relative paths (default: config file dir or cwd)")
	f.String("dataset", "", "JSON dataset with a \"questions\" list")
	f.String("model", "", "Model file name passed to the runner")
	f.String("backend", "", "Compute backend passed to the runner (e.g. HTP0, CPU)")
	f.StringP("report", "o", "", "CSV report path")
	f.String("report-format", "", "Report shape: throughput or question")
	f.String("raw-log", "", "Raw output log path (empty disables)")
	f.String("json-report", "", "Optional JSON Lines mirror of the report")
	f.String("metrics-file", "", "Optional Prometheus textfile for run metrics")
	f.String("runner", "", "Runner script executed with the configured shell")
	f.String("mode", "", "Prompt transmission: file or inline")
	f.String("bridge-command", "", "Device bridge used to push the prompt file (file mode)")
	f.String("remote-prompt", "", "Device path the prompt file is pushed to (file mode)")
	f.IntP("max-tokens", "n", 0, "Tokens to generate per question")
	f.Float64("repeat-penalty", 0, "Repetition penalty passed to the runner (0 = runner default)")
	f.Duration("timeout", 0, "Per-question invocation timeout (0 disables)")
	f.Duration("cooldown", 0, "Pause between questions")
}
