package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ModeFile, cfg.Mode)
	require.Equal(t, FormatThroughput, cfg.ReportFormat)
	require.Equal(t, "M", cfg.ModelEnv)
	require.Equal(t, "D", cfg.BackendEnv)
	require.Equal(t, time.Second, cfg.Cooldown)
}

func TestLoad_NoFileFallsBackToDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope.yaml")
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: Qwen2.5-0.5B-Q4_0.gguf
mode: inline
report_format: question
raw_log: ""
cooldown: 3s
timeout: 90s
repeat_penalty: 1.1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Qwen2.5-0.5B-Q4_0.gguf", cfg.Model)
	require.Equal(t, ModeInline, cfg.Mode)
	require.Equal(t, FormatQuestion, cfg.ReportFormat)
	require.Empty(t, cfg.RawLog)
	require.Equal(t, 3*time.Second, cfg.Cooldown)
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.InDelta(t, 1.1, cfg.RepeatPenalty, 1e-9)
	// untouched keys keep their defaults
	require.Equal(t, "HTP0", cfg.Backend)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, abs, cfg.ProjectRoot)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
project_root = "/workspace"
backend = "CPU"
max_tokens = 128
cooldown = "2s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/workspace", cfg.ProjectRoot)
	require.Equal(t, "CPU", cfg.Backend)
	require.Equal(t, 128, cfg.MaxTokens)
	require.Equal(t, 2*time.Second, cfg.Cooldown)
}

func TestLoad_SearchesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("npu-bench.yml", []byte("backend: GPU\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "GPU", cfg.Backend)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse config file")
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectRoot = "/workspace"
	cfg.JSONReport = "/abs/rows.jsonl"
	require.NoError(t, cfg.Resolve())

	require.Equal(t, "/workspace/dataset/hotpot_qa_30.json", cfg.Dataset)
	require.Equal(t, "/workspace/result/hotpot_results.csv", cfg.Report)
	require.Equal(t, "/workspace/result/raw_terminal_output.log", cfg.RawLog)
	require.Equal(t, "/workspace/scripts/snapdragon/adb/run-completion.sh", cfg.Runner)
	require.Equal(t, "/workspace/temp_prompt.txt", cfg.LocalPromptPath)
	require.Equal(t, "/abs/rows.jsonl", cfg.JSONReport)
	require.Empty(t, cfg.MetricsFile)
	require.Equal(t, "/data/local/tmp/prompt.txt", cfg.RemotePromptPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "socket" }, "unknown mode"},
		{"bad format", func(c *Config) { c.ReportFormat = "xml" }, "unknown report_format"},
		{"no shell", func(c *Config) { c.Shell = "" }, "shell is required"},
		{"no runner", func(c *Config) { c.Runner = "" }, "runner is required"},
		{"no report", func(c *Config) { c.Report = "" }, "report is required"},
		{"zero tokens", func(c *Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }, "cooldown"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"file mode without bridge", func(c *Config) { c.BridgeCommand = "" }, "file mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("inline mode needs no bridge", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mode = ModeInline
		cfg.BridgeCommand = ""
		require.NoError(t, cfg.Validate())
	})
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "npu-bench.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/workspace", cfg.ProjectRoot)
	require.Equal(t, 5*time.Minute, cfg.Timeout)
}
