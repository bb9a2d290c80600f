/*
PURPOSE:
  Mirrors benchmark rows to a JSON Lines file (NDJSON).
  Optimized for machine parsing (jq).

REQUIREMENTS:
  Implementation-discovered:
  - JSON Lines is append-friendly; each row is self-contained.
  - Unavailable values are null rather than "N/A".

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine when json_report is set.
  - Consumes: internal/model.Row

ERROR HANDLING:
  - Returns error on file creation or write failure.

USAGE:
  w, err := output.NewJSONWriter("result/rows.jsonl")
  w.Write(row)
  w.Close()
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/daryltucker/npu-bench/internal/model"
)

// JSONWriter handles writing rows to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter, truncating path.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create json report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single row as a JSON line and syncs it to disk.
func (jw *JSONWriter) Write(r model.Row) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.encoder.Encode(r); err != nil {
		return err
	}
	return jw.file.Sync()
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
