// Package report writes the shutdown summary described in SPEC_FULL.md
// §4.L, grounded on the teacher's MarkdownReporter.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/satfuzz/satfuzz/internal/crash"
)

// SignatureStats aggregates everything the summary reports for one crash
// signature.
type SignatureStats struct {
	Signature     crash.Signature
	CrashCount    int
	BestCoverage  float64
	RetainedFiles []string
}

// Summary is the full set of data the shutdown report renders.
type Summary struct {
	Iterations          int
	WallTime            time.Duration
	Signatures          []SignatureStats
	ProvidedSeedCrashes int
	GeneratedCrashes    int
}

// Write renders s as markdown and saves it to <outputDir>/SUMMARY.md.
func Write(outputDir string, s Summary) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("report: creating %s: %w", outputDir, err)
	}

	sigs := append([]SignatureStats(nil), s.Signatures...)
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Signature < sigs[j].Signature })

	var content string
	content += "# Fuzzing run summary\n\n"
	content += fmt.Sprintf("Iterations: %d\n\n", s.Iterations)
	content += fmt.Sprintf("Wall time: %s\n\n", s.WallTime)
	content += fmt.Sprintf("Provided-seed crashes: %d\n\n", s.ProvidedSeedCrashes)
	content += fmt.Sprintf("Generated/mutated crashes: %d\n\n", s.GeneratedCrashes)
	content += "## Crash classes\n\n"
	content += "| Signature | Count | Best coverage | Retained files |\n"
	content += "|---|---|---|---|\n"
	for _, sig := range sigs {
		content += fmt.Sprintf("| %s | %d | %.1f%% | %s |\n",
			sig.Signature, sig.CrashCount, sig.BestCoverage, joinOrDash(sig.RetainedFiles))
	}

	return os.WriteFile(filepath.Join(outputDir, "SUMMARY.md"), []byte(content), 0o644)
}

func joinOrDash(files []string) string {
	if len(files) == 0 {
		return "-"
	}
	out := files[0]
	for _, f := range files[1:] {
		out += ", " + f
	}
	return out
}
