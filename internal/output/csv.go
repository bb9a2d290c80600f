/*
PURPOSE:
  Writes per-question benchmark rows to a CSV report.
  Every row reaches the disk before the next question is run.

REQUIREMENTS:
  User-specified:
  - Output to CSV with one of two fixed headers:
      num,prefill_ms,prefill_tps,decode_ms,decode_tps
      num,question,prefill_ms,decode_ms
  - A new run truncates the report; it never appends across runs.
  - Missing values are written as "N/A".

  Implementation-discovered:
  - The file is opened, appended and closed on every row so a crash or an
    interrupted run keeps all completed rows.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Row

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() and Close() after every row.

USAGE:
  w, err := output.NewCSVWriter("result/hotpot_results.csv", config.FormatThroughput)
  w.Append(row)

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/daryltucker/npu-bench/internal/config"
	"github.com/daryltucker/npu-bench/internal/model"
)

// Header returns the fixed CSV header for a report format.
func Header(format string) []string {
	if format == config.FormatQuestion {
		return []string{"num", "question", "prefill_ms", "decode_ms"}
	}
	return []string{"num", "prefill_ms", "prefill_tps", "decode_ms", "decode_tps"}
}

// Record maps a row onto the columns of Header(format).
func Record(format string, r model.Row) []string {
	num := strconv.Itoa(r.Index)
	if format == config.FormatQuestion {
		return []string{num, r.Question, r.PrefillMS.String(), r.DecodeMS.String()}
	}
	return []string{num, r.PrefillMS.String(), r.PrefillTPS.String(), r.DecodeMS.String(), r.DecodeTPS.String()}
}

// CSVWriter appends benchmark rows to a CSV file.
type CSVWriter struct {
	path   string
	format string
	mu     sync.Mutex
}

// NewCSVWriter creates the report, overwriting any previous content,
// and writes the header.
func NewCSVWriter(path, format string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header(format)); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return &CSVWriter{path: path, format: format}, nil
}

// Path returns the report location.
func (cw *CSVWriter) Path() string {
	return cw.path
}

// Append writes a single row and closes the file again.
func (cw *CSVWriter) Append(r model.Row) (err error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	f, err := os.OpenFile(cw.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(Record(cw.format, r)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
