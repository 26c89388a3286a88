// Package coverage implements the coverage-oracle contract from spec.md
// §4.F and ships one concrete default implementation backed by gcovr's
// JSON report format.
package coverage

import (
	"os"
	"path/filepath"

	"github.com/zjy-dev/gcovr-json-util/v2/pkg/gcovr"
)

// Oracle returns cumulative SUT line-coverage percentage in [0,100] at
// call time. It is not required to be monotonic across calls; callers
// treat the returned value as a snapshot.
type Oracle interface {
	Coverage(sutSourcePath string) (float64, error)
}

// summaryRelPath is where GcovrOracle expects the SUT's own build/test
// harness to maintain a gcovr JSON summary, refreshed as it runs.
// satfuzz never invokes gcovr itself.
const summaryRelPath = "coverage/summary.json"

// GcovrOracle is satfuzz's default Oracle, grounded on the teacher's own
// gcovr-report adapter.
type GcovrOracle struct{}

func NewGcovrOracle() *GcovrOracle {
	return &GcovrOracle{}
}

// Coverage reads <sutSourcePath>/coverage/summary.json and derives a
// cumulative line-coverage percentage from the report's per-function
// covered/total line counts, summed across every function the report
// lists (per-function entries carry their own covered/total counts
// regardless of whether that function is itself fully covered, matching
// how the teacher's own adapter walks this same field). A missing or
// unparsable file is treated as 0% rather than an error: the fuzzer must
// keep running before the SUT's coverage tooling has produced its first
// report.
func (o *GcovrOracle) Coverage(sutSourcePath string) (float64, error) {
	path := filepath.Join(sutSourcePath, summaryRelPath)
	if _, err := os.Stat(path); err != nil {
		return 0, nil
	}

	report, err := gcovr.ParseSummaryFile(path)
	if err != nil || report == nil {
		return 0, nil
	}

	var covered, total int
	for _, f := range report.Files {
		for _, fn := range f.UncoveredFunctions {
			covered += fn.CoveredLines
			total += fn.TotalLines
		}
	}
	if total == 0 {
		return 0, nil
	}
	return 100 * float64(covered) / float64(total), nil
}
