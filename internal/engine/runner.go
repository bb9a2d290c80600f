/*
PURPOSE:
  High-level runner that orchestrates one benchmark run.
  Dataset -> for each question: invoke, log raw output, extract, append row.

REQUIREMENTS:
  User-specified:
  - Strictly sequential; one question is fully recorded before the next.
  - Report has exactly one header and one row per attempted question, in
    dataset order.
  - Extraction failures warn the operator and the run continues.
  - Fixed cooldown between questions to let the NPU settle.

  Implementation-discovered:
  - The dataset is loaded before any output is created, so a missing
    dataset leaves previous reports untouched.
  - Cancellation (Ctrl-C) is checked between questions and once more after
    the last one; rows already appended stay on disk.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/dataset, internal/engine/invoker.go, internal/timing,
    internal/output

ERROR HANDLING:
  - Missing dataset and report write failures abort the run.
  - Invocation failures, raw-log and JSON write failures are logged and
    the run continues.

USAGE:
  summary, err := engine.Run(ctx, cfg, engine.Options{})

MAINTENANCE:
  - Update iteration logic if multi-device execution is ever introduced.
*/

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/npu-bench/internal/config"
	"github.com/daryltucker/npu-bench/internal/dataset"
	"github.com/daryltucker/npu-bench/internal/model"
	"github.com/daryltucker/npu-bench/internal/output"
	"github.com/daryltucker/npu-bench/internal/timing"
)

// Options carries the run's collaborators. Zero values select the defaults.
type Options struct {
	Executor Executor  // default ProcessExecutor
	Stdout   io.Writer // progress output, default os.Stdout
	RunID    string    // default a random UUID
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	RunID              string
	Total              int
	Processed          int
	ParseFailures      int
	InvocationFailures int
	Report             string
	RawLog             string
	Interrupted        bool
}

// Run executes the benchmark described by cfg. cfg must be resolved.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	log := output.Logger.With("run", opts.RunID)

	questions, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:  opts.RunID,
		Total:  len(questions),
		Report: cfg.Report,
		RawLog: cfg.RawLog,
	}

	report, err := output.NewCSVWriter(cfg.Report, cfg.ReportFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to init CSV report at %s: %w", cfg.Report, err)
	}

	var rawLog *output.RawLog
	if cfg.RawLog != "" {
		rawLog, err = output.NewRawLog(cfg.RawLog, opts.RunID)
		if err != nil {
			return nil, fmt.Errorf("failed to init raw log at %s: %w", cfg.RawLog, err)
		}
	}

	var jsonReport *output.JSONWriter
	if cfg.JSONReport != "" {
		jsonReport, err = output.NewJSONWriter(cfg.JSONReport)
		if err != nil {
			return nil, fmt.Errorf("failed to init JSON report at %s: %w", cfg.JSONReport, err)
		}
		defer jsonReport.Close()
	}

	metrics := output.NewMetrics(cfg.Model, cfg.Backend)
	console := output.NewConsole(opts.Stdout)
	invoker := NewInvoker(cfg, opts.Executor)

	log.Info("Starting benchmark",
		"questions", len(questions),
		"model", cfg.Model,
		"backend", cfg.Backend,
		"mode", cfg.Mode,
		"report", cfg.Report,
	)
	console.Start(len(questions), opts.RunID)

	for i, question := range questions {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		idx := i + 1
		console.Processing(idx, len(questions))

		res := invoker.Invoke(ctx, question)

		row := model.Row{
			Index:    idx,
			Question: question,
			Timings:  timing.Parse(res.Output),
		}

		note := ""
		if res.Err != nil {
			summary.InvocationFailures++
			row.Error = res.Err.Error()
			note = "invocation failed: " + row.Error
			log.Error("Invocation failed", "index", idx, "duration", res.Duration, "error", res.Err)
		}

		if rawLog != nil {
			if err := rawLog.Append(idx, question, res.Output, note); err != nil {
				log.Error("Failed to append raw log", "index", idx, "error", err)
			}
		}

		if !row.Complete() {
			summary.ParseFailures++
			console.ParseFailed(idx)
			log.Warn("Timing extraction failed", "index", idx, "output_bytes", len(res.Output))
		}

		if err := report.Append(row); err != nil {
			return summary, fmt.Errorf("failed to append row %d to %s: %w", idx, cfg.Report, err)
		}
		if jsonReport != nil {
			if err := jsonReport.Write(row); err != nil {
				log.Error("Failed to write row to JSON", "index", idx, "error", err)
			}
		}
		metrics.Observe(row, res.Err != nil)
		summary.Processed++

		console.Result(len(questions), row)
		log.Debug("Question recorded",
			"index", idx,
			"prefill_ms", row.PrefillMS.String(),
			"decode_ms", row.DecodeMS.String(),
			"duration", res.Duration,
		)

		if idx < len(questions) && !cooldown(ctx, cfg.Cooldown) {
			summary.Interrupted = true
			break
		}
	}
	// a signal during the last question skips both checks above
	if ctx.Err() != nil {
		summary.Interrupted = true
	}

	if err := invoker.Cleanup(); err != nil {
		log.Warn("Failed to remove staged prompt", "path", cfg.LocalPromptPath, "error", err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Failed to write metrics textfile", "path", cfg.MetricsFile, "error", err)
		}
	}

	if summary.Interrupted {
		log.Warn("Benchmark interrupted", "processed", summary.Processed, "total", summary.Total)
		return summary, fmt.Errorf("run interrupted after %d of %d questions: %w", summary.Processed, summary.Total, context.Cause(ctx))
	}

	console.Done(summary.Processed, summary.ParseFailures, summary.InvocationFailures, cfg.Report, cfg.RawLog)
	log.Info("Benchmark completed",
		"processed", summary.Processed,
		"parse_failures", summary.ParseFailures,
		"invocation_failures", summary.InvocationFailures,
	)
	return summary, nil
}

// cooldown waits d, returning false if ctx ends first.
func cooldown(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
