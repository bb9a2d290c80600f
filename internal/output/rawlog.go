/*
PURPOSE:
  Writes the full runner output of every question to a plain-text log for
  manual audit.

REQUIREMENTS:
  User-specified:
  - Truncated at the start of a run and opened with a fixed banner.
  - Per question: the index, the prompt, a separator, the verbatim output
    and a closing rule.

  Implementation-discovered:
  - Invocation failures are noted after the output so the log explains an
    N/A row.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine when raw_log is set.

ERROR HANDLING:
  - Returns error on directory creation or write failure.

USAGE:
  rl, err := output.NewRawLog("result/raw_terminal_output.log", runID)
  rl.Append(1, prompt, out, "")
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RawLogBanner is the first line of every raw log.
const RawLogBanner = "=== Snapdragon NPU Inference Raw Logs ==="

// RawLog keeps the full runner output of every question for manual audit.
// The program never reads it back.
type RawLog struct {
	path string
	mu   sync.Mutex
}

// NewRawLog truncates path and writes the banner. runID may be empty.
func NewRawLog(path, runID string) (*RawLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create raw log directory: %w", err)
	}

	header := RawLogBanner + "\n"
	if runID != "" {
		header += "run: " + runID + "\n"
	}
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return nil, err
	}
	return &RawLog{path: path}, nil
}

// Path returns the log location.
func (rl *RawLog) Path() string {
	return rl.path
}

// Append writes one question section. note is printed after the output when
// non-empty (e.g. an invocation error).
func (rl *RawLog) Append(index int, prompt, output, note string) (err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, err := os.OpenFile(rl.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var b strings.Builder
	fmt.Fprintf(&b, "\n\n--- QUESTION %d ---\n", index)
	fmt.Fprintf(&b, "PROMPT: %s\n", prompt)
	b.WriteString(strings.Repeat("-", 30) + "\n")
	b.WriteString(output)
	if note != "" {
		fmt.Fprintf(&b, "\n[npu-bench] %s", note)
	}
	b.WriteString("\n" + strings.Repeat("=", 50) + "\n")

	_, err = f.WriteString(b.String())
	return err
}
