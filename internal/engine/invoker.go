/*
PURPOSE:
  Runs the on-device inference runner once per question and captures
  everything it printed.

REQUIREMENTS:
  User-specified:
  - File-staging mode: write the prompt to a local file, `adb push` it to
    the device, run the runner with `-f <remote file>`. Avoids shell
    quoting problems with prompts containing quotes or control characters.
  - Inline mode: pass the prompt with `-p <prompt>`. Prompts with quotes
    may be mangled by the runner script; that is a known limitation.
  - Model file and compute backend are selected with environment
    variables set on the child process only.
  - Output is stdout followed by stderr.

  Implementation-discovered:
  - The staged prompt file is reused for every question and removed once
    by Cleanup() at the end of the run.
  - A failed push skips the runner: the device would otherwise answer the
    previous question's prompt.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Uses: internal/config

ERROR HANDLING:
  - Start failures, non-zero exits and timeouts are returned in
    Invocation.Err. Whatever was printed is still returned in Output.

IMPLEMENTATION RULES:
  - Every external command goes through the Executor interface.
  - Enforce the per-invocation timeout with a context.

USAGE:
  inv := engine.NewInvoker(cfg, engine.ProcessExecutor{})
  res := inv.Invoke(ctx, question)
  defer inv.Cleanup()
*/

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/npu-bench/internal/config"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Env  []string // full child environment; nil inherits the parent's
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Executor runs external commands.
type Executor interface {
	Run(ctx context.Context, c Command) (stdout, stderr []byte, err error)
}

// ProcessExecutor runs commands with os/exec.
type ProcessExecutor struct{}

// Run starts c and waits for it. Killing on ctx cancellation is handled by exec.
func (ProcessExecutor) Run(ctx context.Context, c Command) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	// adb keeps its server as a grandchild; don't wait on its pipes forever
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Invocation is the result of running the runner for one prompt.
type Invocation struct {
	Output   string
	Err      error
	Duration time.Duration
}

// Invoker sends prompts to the device runner.
type Invoker struct {
	cfg  *config.Config
	exec Executor
}

// NewInvoker creates an Invoker. cfg is expected to be resolved.
func NewInvoker(cfg *config.Config, executor Executor) *Invoker {
	if executor == nil {
		executor = ProcessExecutor{}
	}
	return &Invoker{cfg: cfg, exec: executor}
}

// Invoke runs the runner once for prompt.
func (inv *Invoker) Invoke(ctx context.Context, prompt string) Invocation {
	start := time.Now()
	if inv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.cfg.Timeout)
		defer cancel()
	}

	var args []string
	if inv.cfg.Mode == config.ModeInline {
		args = inv.runnerArgs("-p", prompt)
	} else {
		if err := inv.stage(ctx, prompt); err != nil {
			return Invocation{Err: err, Duration: time.Since(start)}
		}
		args = inv.runnerArgs("-f", inv.cfg.RemotePromptPath)
	}

	stdout, stderr, err := inv.exec.Run(ctx, Command{
		Name: inv.cfg.Shell,
		Args: args,
		Env:  inv.childEnv(),
		Dir:  inv.cfg.ProjectRoot,
	})

	res := Invocation{
		Output:   string(stdout) + string(stderr),
		Duration: time.Since(start),
	}
	if err != nil {
		res.Err = classify(ctx, "runner", err)
	}
	return res
}

// stage writes prompt to the local file and pushes it to the device.
func (inv *Invoker) stage(ctx context.Context, prompt string) error {
	if err := os.WriteFile(inv.cfg.LocalPromptPath, []byte(prompt), 0644); err != nil {
		return fmt.Errorf("failed to stage prompt at %s: %w", inv.cfg.LocalPromptPath, err)
	}

	stdout, stderr, err := inv.exec.Run(ctx, Command{
		Name: inv.cfg.BridgeCommand,
		Args: []string{"push", inv.cfg.LocalPromptPath, inv.cfg.RemotePromptPath},
		Dir:  inv.cfg.ProjectRoot,
	})
	if err != nil {
		msg := strings.TrimSpace(string(stdout) + string(stderr))
		if msg != "" {
			return fmt.Errorf("%w: %s", classify(ctx, "push", err), msg)
		}
		return classify(ctx, "push", err)
	}
	return nil
}

func (inv *Invoker) runnerArgs(promptFlag, promptValue string) []string {
	args := []string{inv.cfg.Runner, promptFlag, promptValue, "-n", strconv.Itoa(inv.cfg.MaxTokens)}
	if inv.cfg.RepeatPenalty > 0 {
		args = append(args, "--repeat-penalty", strconv.FormatFloat(inv.cfg.RepeatPenalty, 'f', -1, 64))
	}
	return args
}

// childEnv copies the parent environment and selects model and backend.
func (inv *Invoker) childEnv() []string {
	env := os.Environ()
	return append(env,
		inv.cfg.ModelEnv+"="+inv.cfg.Model,
		inv.cfg.BackendEnv+"="+inv.cfg.Backend,
	)
}

func classify(ctx context.Context, step string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out: %w", step, context.DeadlineExceeded)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with code %d: %w", step, exitErr.ExitCode(), err)
	}
	return fmt.Errorf("%s failed: %w", step, err)
}

// Cleanup removes the staged prompt file. Safe to call more than once.
func (inv *Invoker) Cleanup() error {
	if inv.cfg.Mode != config.ModeFile {
		return nil
	}
	if err := os.Remove(inv.cfg.LocalPromptPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
