/*
PURPOSE:
  Loads the benchmark question list from a JSON document.

REQUIREMENTS:
  User-specified:
  - The document is an object whose "questions" key holds a list of strings.
  - A missing file is fatal; no output is created.

  Implementation-discovered:
  - A document without "questions" yields an empty list, not an error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine.Run(), before any output is opened.

ERROR HANDLING:
  - ErrNotFound (wrapped with the path) when the file does not exist.
  - Read and JSON decode errors are wrapped with the path.

USAGE:
  questions, err := dataset.Load("dataset/hotpot_qa_30.json")
*/

package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotFound is returned when the dataset file does not exist.
var ErrNotFound = errors.New("dataset not found")

type document struct {
	Questions []string `json:"questions"`
}

// Load reads a JSON document and returns the list bound to "questions".
// A document without that key yields an empty list.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if doc.Questions == nil {
		return []string{}, nil
	}
	return doc.Questions, nil
}
