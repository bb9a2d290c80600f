/*
PURPOSE:
  Defines the configuration structure and loading logic for npu-bench.
  Every path the harness touches is resolved here, once, before the run.

REQUIREMENTS:
  User-specified:
  - Dataset, model, report, raw log and runner script paths relative to a
    project root.
  - Model file name and compute backend are passed to the runner via
    environment variables.
  - Configurable per-invocation timeout and inter-question cooldown.

  Implementation-discovered:
  - Needs to support YAML and TOML files.
  - Flag / env overrides are applied by internal/cli after Load().

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3, github.com/BurntSushi/toml

ERROR HANDLING:
  - Returns explicit error if a named config file is missing or invalid.
  - Missing default config files fall back to DefaultConfig().

IMPLEMENTATION RULES:
  - Config struct tags must support yaml and toml.
  - RemotePromptPath is a device path and is never resolved locally.

USAGE:
  cfg, err := config.Load("npu-bench.yaml")
  cfg.Resolve()
  err = cfg.Validate()

RELATED FILES:
  - internal/cli/run.go
  - internal/engine/invoker.go
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Transmission modes for the prompt.
const (
	ModeFile   = "file"   // stage prompt in a file and push it to the device
	ModeInline = "inline" // pass the prompt as a runner argument
)

// Report shapes.
const (
	FormatThroughput = "throughput" // num,prefill_ms,prefill_tps,decode_ms,decode_tps
	FormatQuestion   = "question"   // num,question,prefill_ms,decode_ms
)

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"npu-bench.yaml", "npu-bench.yml", "npu-bench.toml"}

// Config represents the full configuration for a benchmark run.
type Config struct {
	ProjectRoot string `yaml:"project_root" toml:"project_root"`
	Dataset     string `yaml:"dataset" toml:"dataset"`

	Model      string `yaml:"model" toml:"model"`
	Backend    string `yaml:"backend" toml:"backend"`
	ModelEnv   string `yaml:"model_env" toml:"model_env"`
	BackendEnv string `yaml:"backend_env" toml:"backend_env"`

	Report       string `yaml:"report" toml:"report"`
	ReportFormat string `yaml:"report_format" toml:"report_format"`
	RawLog       string `yaml:"raw_log" toml:"raw_log"` // empty disables the raw log
	JSONReport   string `yaml:"json_report" toml:"json_report"`
	MetricsFile  string `yaml:"metrics_file" toml:"metrics_file"`

	Shell         string  `yaml:"shell" toml:"shell"`
	Runner        string  `yaml:"runner" toml:"runner"`
	MaxTokens     int     `yaml:"max_tokens" toml:"max_tokens"`
	RepeatPenalty float64 `yaml:"repeat_penalty" toml:"repeat_penalty"` // 0 = not passed

	Mode             string `yaml:"mode" toml:"mode"`
	BridgeCommand    string `yaml:"bridge_command" toml:"bridge_command"`
	RemotePromptPath string `yaml:"remote_prompt_path" toml:"remote_prompt_path"`
	LocalPromptPath  string `yaml:"local_prompt_path" toml:"local_prompt_path"`

	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
	Cooldown time.Duration `yaml:"cooldown" toml:"cooldown"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dataset:          "dataset/hotpot_qa_30.json",
		Model:            "Llama-3.2-1B-Instruct-Q4_0.gguf",
		Backend:          "HTP0",
		ModelEnv:         "M",
		BackendEnv:       "D",
		Report:           "result/hotpot_results.csv",
		ReportFormat:     FormatThroughput,
		RawLog:           "result/raw_terminal_output.log",
		Shell:            "sh",
		Runner:           "scripts/snapdragon/adb/run-completion.sh",
		MaxTokens:        256,
		Mode:             ModeFile,
		BridgeCommand:    "adb",
		RemotePromptPath: "/data/local/tmp/prompt.txt",
		LocalPromptPath:  "temp_prompt.txt",
		Timeout:          5 * time.Minute,
		Cooldown:         1 * time.Second,
	}
}

// Load reads configuration from a file.
// If path is empty, DefaultFiles are searched in the working directory and
// the defaults are returned when none exists.
// An empty ProjectRoot becomes the directory of the loaded file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.ProjectRoot == "" {
		if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
			cfg.ProjectRoot = abs
		}
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Resolve makes every local path absolute against ProjectRoot.
// An empty ProjectRoot is taken to be the working directory.
func (c *Config) Resolve() error {
	if c.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine project root: %w", err)
		}
		c.ProjectRoot = wd
	}
	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve project root %s: %w", c.ProjectRoot, err)
	}
	c.ProjectRoot = root

	for _, p := range []*string{&c.Dataset, &c.Report, &c.RawLog, &c.JSONReport, &c.MetricsFile, &c.Runner, &c.LocalPromptPath} {
		*p = c.abs(*p)
	}
	return nil
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// Validate checks option values that would otherwise fail deep inside the run.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeFile, ModeInline:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, ModeFile, ModeInline))
	}
	switch c.ReportFormat {
	case FormatThroughput, FormatQuestion:
	default:
		errs = append(errs, fmt.Errorf("unknown report_format %q (want %q or %q)", c.ReportFormat, FormatThroughput, FormatQuestion))
	}
	if c.Shell == "" {
		errs = append(errs, errors.New("shell is required"))
	}
	if c.Runner == "" {
		errs = append(errs, errors.New("runner is required"))
	}
	if c.Report == "" {
		errs = append(errs, errors.New("report is required"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown))
	}
	if c.Mode == ModeFile && (c.BridgeCommand == "" || c.RemotePromptPath == "" || c.LocalPromptPath == "") {
		errs = append(errs, errors.New("file mode needs bridge_command, remote_prompt_path and local_prompt_path"))
	}

	return errors.Join(errs...)
}
