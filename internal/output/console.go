/*
PURPOSE:
  Operator-facing progress on stdout: one line per question with the
  throughput figures, a warning for unparsed output, and a final summary.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: github.com/charmbracelet/lipgloss

IMPLEMENTATION RULES:
  - Structured diagnostics go through Logger; this file only prints what a
    person watching the run needs to see.
*/

package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/daryltucker/npu-bench/internal/model"
)

// Console prints operator-facing progress on stdout.
// Colors are dropped automatically when w is not a terminal.
type Console struct {
	w      io.Writer
	title  lipgloss.Style
	warn   lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		warn:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		value:  r.NewStyle().Foreground(lipgloss.Color("10")),
		muted:  r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
}

// Start announces the run.
func (c *Console) Start(total int, runID string) {
	fmt.Fprintln(c.w, c.title.Render("Starting NPU Benchmark (Prefill & Decode metrics)..."))
	fmt.Fprintln(c.w, c.muted.Render(fmt.Sprintf("run %s, %d questions", runID, total)))
}

// Processing overwrites the current line while a question is in flight.
func (c *Console) Processing(i, total int) {
	fmt.Fprintf(c.w, "[%d/%d] Processing inference...\r", i, total)
}

// Result prints the per-question throughput line.
func (c *Console) Result(total int, r model.Row) {
	fmt.Fprintf(c.w, "[%d/%d] Prefill: %s TPS | Decode: %s TPS\n",
		r.Index, total, c.value.Render(r.PrefillTPS.String()), c.value.Render(r.DecodeTPS.String()))
}

// ParseFailed warns that question i produced no usable timings.
func (c *Console) ParseFailed(i int) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.warn.Render(fmt.Sprintf("[!] Question %d parsing failed. Check logs.", i)))
}

// Done prints the closing summary. rawLog may be empty.
func (c *Console) Done(processed, parseFailures, invocationFailures int, report, rawLog string) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.title.Render("Benchmark completed successfully!"))
	fmt.Fprintf(c.w, "%s %d questions, %d parse failures, %d invocation failures\n",
		c.header.Render("Processed:"), processed, parseFailures, invocationFailures)
	fmt.Fprintf(c.w, "%s %s\n", c.header.Render("Summary:"), report)
	if rawLog != "" {
		fmt.Fprintf(c.w, "%s %s\n", c.header.Render("Full Logs (including model answers):"), rawLog)
	}
}
