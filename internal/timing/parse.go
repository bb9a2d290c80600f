/*
PURPOSE:
  Extracts prefill and decode timings from the free-form text printed by
  the on-device runner (llama.cpp style perf lines).

REQUIREMENTS:
  User-specified:
  - Prefill: duration before "prompt eval time", plus tokens/s on that line.
  - Decode: duration before an "eval time" that is NOT "prompt eval time".
  - Anything not found is "N/A"; the row is still written.

  Implementation-discovered:
  - "eval time" is a suffix of "prompt eval time", so every phase report is
    matched once and classified by what precedes its label.
  - Throughput is searched only up to the end of the line or the next phase
    report, so one phase never borrows the other's figure.
  - A report whose duration is not a number (e.g. "eval time = . ms") is
    skipped; the first usable report of each phase wins.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (per question), internal/cli (parse command)
  - Produces: internal/model.Timings

ERROR HANDLING:
  - None. Unmatched or non-numeric fields stay unavailable.

USAGE:
  t := timing.Parse(output)
  if !t.Complete() { ... }

SELF-HEALING INSTRUCTIONS:
  - If the runner changes its perf line format, update phasePattern and
    tpsPattern and add the new sample to parse_test.go.
*/

package timing

import (
	"regexp"
	"strings"

	"github.com/daryltucker/npu-bench/internal/model"
)

// prompt eval time =     123.45 ms /    12 tokens (   10.29 ms per token,    97.21 tokens per second)
//        eval time =    4567.89 ms /   255 runs   (   17.91 ms per token,    55.83 tokens per second)
var (
	phasePattern = regexp.MustCompile(`eval time\s*=\s*([\d.]+)\s*ms`)
	tpsPattern   = regexp.MustCompile(`([\d.]+)\s*tokens per second`)
)

// prefillQualifier marks a phase report as prompt evaluation.
const prefillQualifier = "prompt "

// Phase is one "eval time" report found in the output.
type Phase struct {
	Prefill    bool
	Duration   model.Value
	Throughput model.Value
}

// Phases returns every phase report in output, in order of appearance.
func Phases(output string) []Phase {
	locs := phasePattern.FindAllStringSubmatchIndex(output, -1)
	phases := make([]Phase, 0, len(locs))

	for i, loc := range locs {
		end := len(output)
		if nl := strings.IndexByte(output[loc[1]:], '\n'); nl >= 0 {
			end = loc[1] + nl
		}
		if i+1 < len(locs) && locs[i+1][0] < end {
			end = locs[i+1][0]
		}

		p := Phase{
			Prefill:  strings.HasSuffix(output[:loc[0]], prefillQualifier),
			Duration: model.NewValue(output[loc[2]:loc[3]]),
		}
		if m := tpsPattern.FindStringSubmatch(output[loc[1]:end]); m != nil {
			p.Throughput = model.NewValue(m[1])
		}
		phases = append(phases, p)
	}
	return phases
}

// Parse returns the first prefill and the first decode phase in output
// whose duration is a number.
func Parse(output string) model.Timings {
	var t model.Timings
	var havePrefill, haveDecode bool

	for _, p := range Phases(output) {
		if !p.Duration.OK {
			continue
		}
		switch {
		case p.Prefill && !havePrefill:
			t.PrefillMS, t.PrefillTPS = p.Duration, p.Throughput
			havePrefill = true
		case !p.Prefill && !haveDecode:
			t.DecodeMS, t.DecodeTPS = p.Duration, p.Throughput
			haveDecode = true
		}
		if havePrefill && haveDecode {
			break
		}
	}
	return t
}
