package fuzz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/satfuzz/satfuzz/internal/corpus"
	"github.com/satfuzz/satfuzz/internal/dimacs"
	"github.com/satfuzz/satfuzz/internal/generate"
	"github.com/satfuzz/satfuzz/internal/logger"
	"github.com/satfuzz/satfuzz/internal/mutate"
	"github.com/satfuzz/satfuzz/internal/outdir"
	"github.com/satfuzz/satfuzz/internal/report"
	"github.com/satfuzz/satfuzz/internal/runner"
)

// runProvidedInputs implements spec.md §4.I phase 1: scan
// ProvidedInputsDir for *.cnf entries, run each through the SUT with the
// provided-input timeout, and record+copy any interesting result.
func (f *Fuzzer) runProvidedInputs() error {
	entries, err := os.ReadDir(f.cfg.ProvidedInputsDir)
	if err != nil {
		return fmt.Errorf("reading provided inputs dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cnf") {
			continue
		}
		path := filepath.Join(f.cfg.ProvidedInputsDir, e.Name())
		out, err := f.runFile(path, runner.ProvidedInputTimeout)
		if err != nil {
			logger.Warn("provided input %s: %v", e.Name(), err)
			continue
		}
		if out == nil {
			continue
		}
		if err := f.dir.CopyProvidedSeed(path); err != nil {
			logger.Warn("copying provided seed %s: %v", e.Name(), err)
			continue
		}
		out.RecordedAs = e.Name()
		f.corpus.Record(*out)
		f.providedSeedCrashes++
	}
	return nil
}

// step performs one iteration of spec.md §4.I phase 2: with probability
// 0.35 generate a fresh file and run it, otherwise pop the head of the
// work queue and mutate it.
func (f *Fuzzer) step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()

	if f.rng.Bool(generatePhaseProbability) {
		return f.generateStep()
	}
	return f.mutateStep()
}

func (f *Fuzzer) generateStep() error {
	f.lastPhase = "generate"
	strategy := generate.Pick(f.rng)
	contents := generate.Generate(strategy, f.rng)

	if err := os.WriteFile(f.scratch, contents, 0o644); err != nil {
		return fmt.Errorf("writing scratch file: %w", err)
	}

	out, err := f.runFile(f.scratch, runner.GenerationTimeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	out.TestFilePath = f.scratch
	out.Content = contents
	if name, err := f.saveCrash(contents); err != nil {
		logger.Warn("recording crash file: %v", err)
	} else {
		out.RecordedAs = name
		f.generatedCrashes++
	}
	f.corpus.Record(*out)
	return nil
}

func (f *Fuzzer) mutateStep() error {
	f.lastPhase = "mutate"
	before, ok := f.corpus.PopWork()
	if !ok {
		return nil
	}

	parsed, ok := dimacs.Parse(string(before.Content))
	if !ok {
		return nil
	}

	strategy := mutate.Pick(f.rng)
	contents := mutate.Mutate(strategy, parsed, f.rng)

	if err := os.WriteFile(f.scratch, contents, 0o644); err != nil {
		return fmt.Errorf("writing scratch file: %w", err)
	}

	result, err := f.runFile(f.scratch, runner.MutationTimeout)
	if err != nil {
		return err
	}

	after := corpus.RunOutput{TestFilePath: f.scratch}
	afterIsNew := false
	if result != nil {
		after = *result
		after.Content = contents
		afterIsNew = !f.corpus.HasSignature(after.Signature)

		if name, err := f.saveCrash(contents); err != nil {
			logger.Warn("recording crash file: %v", err)
		} else {
			after.RecordedAs = name
			f.generatedCrashes++
		}
		f.corpus.Record(after)
	}

	keepAfter, keepBefore := corpus.IsInterestingMutation(before, after, afterIsNew)
	// On first sighting, corpus.Record already pushed after onto work_queue
	// as part of its new-signature rule; enqueuing it again here would
	// double the push.
	if keepAfter && result != nil && !afterIsNew {
		f.corpus.Enqueue(after)
	}
	if keepBefore {
		f.corpus.Enqueue(before)
	}
	return nil
}

// saveCrash writes contents into the output directory under the current
// iteration's crash filename and returns that filename.
func (f *Fuzzer) saveCrash(contents []byte) (string, error) {
	name := outdir.CrashName(f.iteration)
	if err := f.dir.RecordCrash(name, contents); err != nil {
		return "", err
	}
	return name, nil
}

// runFile runs path through the SUT and classifies the result. It
// returns (nil, nil) for a non-crash (discard), and waits
// coveragePostRunDelay before sampling coverage, per spec.md §4.F.
func (f *Fuzzer) runFile(path string, timeout time.Duration) (*corpus.RunOutput, error) {
	_, stderr, _ := f.cfg.Run(f.runCmd, path, timeout)

	sig, ok := f.cfg.Analyzer.Analyze(stderr)
	if !ok {
		return nil, nil
	}

	time.Sleep(coveragePostRunDelay)
	pct, err := f.cfg.Coverage.Coverage(f.cfg.SUTSourcePath)
	if err != nil {
		pct = 0
	}
	f.lastCoverage = pct

	return &corpus.RunOutput{
		TestFilePath: path,
		Signature:    sig,
		Stderr:       stderr,
		Coverage:     pct,
	}, nil
}

// shutdown implements spec.md §4.I's shutdown selection/persistence: pick
// the retained set, delete everything else, and write the summary report.
func (f *Fuzzer) shutdown(start time.Time) error {
	preCounts := map[string]int{}
	for _, sig := range f.corpus.Signatures() {
		preCounts[string(sig)] = f.corpus.HeapLen(sig)
	}

	selected := f.corpus.SelectForShutdown(outdir.MaxSavedTests)

	retainNames := make([]string, 0, len(selected))
	bySig := map[string]*report.SignatureStats{}
	for _, r := range selected {
		key := string(r.Signature)
		stats, ok := bySig[key]
		if !ok {
			stats = &report.SignatureStats{Signature: r.Signature, CrashCount: preCounts[key]}
			bySig[key] = stats
		}
		if r.Coverage > stats.BestCoverage {
			stats.BestCoverage = r.Coverage
		}

		name := r.RecordedAs
		if name == "" {
			continue
		}
		retainNames = append(retainNames, name)
		stats.RetainedFiles = append(stats.RetainedFiles, name)
	}

	if err := f.dir.Finalize(retainNames); err != nil {
		logger.Error("finalizing output directory: %v", err)
	}

	sigStats := make([]report.SignatureStats, 0, len(bySig))
	for _, s := range bySig {
		sigStats = append(sigStats, *s)
	}

	return report.Write(f.cfg.OutputDir, report.Summary{
		Iterations:          f.iteration,
		WallTime:            time.Since(start),
		Signatures:          sigStats,
		ProvidedSeedCrashes: f.providedSeedCrashes,
		GeneratedCrashes:    f.generatedCrashes,
	})
}
