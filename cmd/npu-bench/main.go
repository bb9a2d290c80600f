/*
PURPOSE:
  Entry point for npu-bench.
  Hands control to the CLI root command and maps failures to an exit code.

REQUIREMENTS:
  User-specified:
  - Single binary entry point for the on-device benchmark harness.
  - A missing dataset or bad config must stop the run with a diagnostic.

  Implementation-discovered:
  - Cobra owns argument parsing; main only reports the returned error.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Explicit error check on Execute(); exit code 1 on failure.

IMPLEMENTATION RULES:
  - Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o npu-bench ./cmd/npu-bench
  ./npu-bench run --config npu-bench.yaml

RELATED FILES:
  - internal/cli/root.go
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/npu-bench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
