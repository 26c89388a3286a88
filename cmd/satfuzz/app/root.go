// Package app wires the satfuzz command line surface: a single cobra
// command taking the SUT source path, the provided-inputs directory, and
// an optional seed.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/satfuzz/satfuzz/internal/coverage"
	"github.com/satfuzz/satfuzz/internal/crash"
	"github.com/satfuzz/satfuzz/internal/fuzz"
	"github.com/satfuzz/satfuzz/internal/logger"
	"github.com/satfuzz/satfuzz/internal/progress"
	"github.com/satfuzz/satfuzz/internal/runner"

	"github.com/spf13/cobra"
)

const defaultSeed = 42

// NewRootCommand creates the satfuzz root command. There are no
// subcommands and no flags, only the positional arguments spec.md §6
// names.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "satfuzz <sut_source_path> <provided_inputs_dir> [seed]",
		Short: "A black-box, coverage-guided fuzzer for DIMACS CNF SAT solvers.",
		Long: `satfuzz repeatedly generates and mutates DIMACS CNF inputs, runs them
against a solver under test, and retains the most interesting crashing
inputs it finds in the fuzzed-tests directory.

Examples:
  satfuzz ./solver ./seeds
  satfuzz ./solver ./seeds 123`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := int64(defaultSeed)
			if len(args) == 3 {
				parsed, err := strconv.ParseInt(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid seed %q: %w", args[2], err)
				}
				seed = parsed
			}
			return run(cmd.Context(), args[0], args[1], seed)
		},
	}

	return cmd
}

func run(ctx context.Context, sutSourcePath, providedInputsDir string, seed int64) error {
	logger.Init("info")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := fuzz.Config{
		SUTSourcePath:     sutSourcePath,
		ProvidedInputsDir: providedInputsDir,
		Seed:              seed,

		Run:      runner.Run,
		Analyzer: crash.NewRegexAnalyzer(),
		Coverage: coverage.NewGcovrOracle(),
	}

	reporter := progress.New(os.Stdout)

	fuzzer, err := fuzz.New(cfg, reporter)
	if err != nil {
		return fmt.Errorf("initializing fuzzer: %w", err)
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown requested, finishing current iteration...")
		fuzzer.RequestShutdown()
	}()

	return fuzzer.Run()
}
