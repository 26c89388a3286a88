// Package fuzz wires the generators, mutators, corpus, subprocess runner,
// crash analyzer, coverage oracle, output directory, progress reporter,
// and shutdown report together into the main fuzzing loop described in
// spec.md §4.I.
package fuzz

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/satfuzz/satfuzz/internal/corpus"
	"github.com/satfuzz/satfuzz/internal/coverage"
	"github.com/satfuzz/satfuzz/internal/crash"
	"github.com/satfuzz/satfuzz/internal/generate"
	"github.com/satfuzz/satfuzz/internal/logger"
	"github.com/satfuzz/satfuzz/internal/outdir"
	"github.com/satfuzz/satfuzz/internal/progress"
	"github.com/satfuzz/satfuzz/internal/rng"
)

// generatePhaseProbability is spec.md §4.I's per-iteration coin flip
// between generating a fresh file and mutating the work queue's head.
const generatePhaseProbability = 0.35

// coveragePostRunDelay is the fixed delay spec.md §4.F requires before
// calling the coverage oracle, to let any coverage-writing tooling flush.
const coveragePostRunDelay = 250 * time.Millisecond

// Runner executes the SUT once against a test file and returns the
// captured output. Swappable for tests.
type Runner func(command, inputPath string, timeout time.Duration) (stdout, stderr []byte, exitStatus int)

// Config collects every collaborator and parameter the fuzzer needs.
type Config struct {
	SUTSourcePath     string
	ProvidedInputsDir string
	Seed              int64

	Run      Runner
	Analyzer crash.Analyzer
	Coverage coverage.Oracle

	OutputDir string // defaults to "fuzzed-tests" if empty
}

// Fuzzer owns all mutable fuzzing state: the RNG, the corpus, and the
// output directory. It is mutated only by the single fuzzing loop
// (spec.md §5).
type Fuzzer struct {
	cfg Config

	rng       *rng.Source
	corpus    *corpus.Corpus
	dir       *outdir.Dir
	reporter  *progress.Reporter
	scratch   string
	runCmd    string
	iteration int

	lastPhase    string
	lastCoverage float64

	providedSeedCrashes int
	generatedCrashes    int

	shuttingDown atomic.Bool
}

// New constructs a Fuzzer, pre-populating the output directory with dummy
// files built from the generator pool.
func New(cfg Config, reporterOut *progress.Reporter) (*Fuzzer, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "fuzzed-tests"
	}

	f := &Fuzzer{
		cfg:      cfg,
		rng:      rng.New(cfg.Seed),
		corpus:   corpus.New(),
		reporter: reporterOut,
		scratch:  "test_input.cnf",
		runCmd:   filepath.Join(cfg.SUTSourcePath, "runsat.sh"),
	}

	dummies := make([][]byte, outdir.MaxSavedTests)
	for i := range dummies {
		strategy := generate.Pick(f.rng)
		dummies[i] = generate.Generate(strategy, f.rng)
	}

	dir, err := outdir.New(cfg.OutputDir, dummies)
	if err != nil {
		return nil, fmt.Errorf("fuzz: preparing output directory: %w", err)
	}
	f.dir = dir
	return f, nil
}

// RequestShutdown flips the shutdown flag observed at the top of the next
// iteration. Safe to call more than once; idempotent.
func (f *Fuzzer) RequestShutdown() {
	f.shuttingDown.Store(true)
}

// Run executes phase 1 (provided inputs) then phase 2 (the main
// generate/mutate loop) until shutdown is requested, then performs the
// shutdown selection/persistence and writes the summary report.
func (f *Fuzzer) Run() error {
	start := time.Now()

	if err := f.runProvidedInputs(); err != nil {
		logger.Warn("provided-inputs phase: %v", err)
	}

	for !f.shuttingDown.Load() {
		f.iteration++
		if err := f.step(); err != nil {
			logger.Error("iteration %d failed: %v", f.iteration, err)
		}
		f.reporter.Print(progress.Status{
			Iteration:    f.iteration,
			Phase:        f.lastPhase,
			Signatures:   len(f.corpus.Signatures()),
			Retained:     f.corpus.TotalCrashes(),
			LastCoverage: f.lastCoverage,
		})
	}
	f.reporter.Done()

	return f.shutdown(start)
}
