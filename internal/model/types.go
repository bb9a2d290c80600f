/*
PURPOSE:
  Defines the data structures shared across npu-bench.
  A Row is one benchmarked question; Timings are the values scraped
  from the on-device runner output.

REQUIREMENTS:
  User-specified:
  - Record prefill and decode duration (ms) and throughput (tokens/s).
  - A value that could not be extracted is written as "N/A", never 0.

  Implementation-discovered:
  - Keep the captured number text verbatim so the report shows exactly
    what the runner printed (no float reformatting).

ARCHITECTURE INTEGRATION:
  - Used by: internal/timing, internal/engine, internal/output

ERROR HANDLING:
  - None (pure data structs).

RELATED FILES:
  - internal/output/csv.go
  - internal/timing/parse.go
*/

package model

import (
	"encoding/json"
	"strconv"
)

// NotAvailable is the report sentinel for a value that could not be extracted.
const NotAvailable = "N/A"

// Value is a single scraped number. The zero Value is "not available".
type Value struct {
	Raw string
	Num float64
	OK  bool
}

// NewValue parses raw as a float. Non-numeric text yields an unavailable Value.
func NewValue(raw string) Value {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{}
	}
	return Value{Raw: raw, Num: n, OK: true}
}

// String returns the captured text, or NotAvailable.
func (v Value) String() string {
	if !v.OK {
		return NotAvailable
	}
	return v.Raw
}

// MarshalJSON writes the number, or null when unavailable.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	return json.Marshal(v.Num)
}

// Timings holds the prefill ("prompt eval") and decode ("eval") figures of one run.
type Timings struct {
	PrefillMS  Value `json:"prefill_ms"`
	PrefillTPS Value `json:"prefill_tps"`
	DecodeMS   Value `json:"decode_ms"`
	DecodeTPS  Value `json:"decode_tps"`
}

// Complete reports whether both phase durations were found.
// Throughput is optional and does not count.
func (t Timings) Complete() bool {
	return t.PrefillMS.OK && t.DecodeMS.OK
}

// Row represents the outcome of benchmarking a single question.
type Row struct {
	Index    int    `json:"num"` // 1-based position in the dataset
	Question string `json:"question"`
	Timings
	Error string `json:"error,omitempty"` // invocation failure, if any
}
