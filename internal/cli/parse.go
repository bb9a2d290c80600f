/*
PURPOSE:
  Defines the 'parse' subcommand.
  Runs the timing extractor over saved runner output.

REQUIREMENTS:
  Implementation-discovered:
  - Useful when the runner's perf line format changes: check extraction
    without a device attached.
  - --strict exits non-zero when either duration is missing.

ARCHITECTURE INTEGRATION:
  - Calls: internal/timing.Parse()

USAGE:
  npu-bench parse result/raw_terminal_output.log
  adb shell ... 2>&1 | npu-bench parse -
*/

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/npu-bench/internal/timing"
)

var strictParse bool

// parseCmd runs the extractor over saved runner output, which helps when the
// runner's perf line format drifts.
var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Extract prefill/decode timings from saved runner output",
	Args:  cobra.ExactArgs(1),
	Example: `  adb shell ... 2>&1 | npu-bench parse -
  npu-bench parse result/raw_terminal_output.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read runner output: %w", err)
		}

		t := timing.Parse(string(data))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "prefill_ms:  %s\n", t.PrefillMS)
		fmt.Fprintf(out, "prefill_tps: %s\n", t.PrefillTPS)
		fmt.Fprintf(out, "decode_ms:   %s\n", t.DecodeMS)
		fmt.Fprintf(out, "decode_tps:  %s\n", t.DecodeTPS)

		if strictParse && !t.Complete() {
			return errors.New("prefill or decode duration not found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&strictParse, "strict", false, "Fail when either duration is missing")
}
