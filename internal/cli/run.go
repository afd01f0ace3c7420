package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/config"
	"github.com/wesleyorama2/inferbench/internal/history"
	"github.com/wesleyorama2/inferbench/internal/metrics"
	"github.com/wesleyorama2/inferbench/internal/report"
)

var (
	errRunInterrupted = errors.New("run interrupted before all requests completed")
	errMemoryAbort    = errors.New("run aborted: memory limit exceeded")
)

// outputOptions are the root command's output flags.
type outputOptions struct {
	probe    bool
	json     string
	history  string
	promFile string
}

func runBenchmark(cmd *cobra.Command, o *runOptions, out *outputOptions) error {
	logger := newLogger(cmd.ErrOrStderr(), o.verbose)

	f, err := loadRunConfig(cmd, o, logger)
	if err != nil {
		return err
	}
	if out.json != "" {
		f.Output.JSON = out.json
	}
	if out.history != "" {
		f.Output.History = out.history
	}
	if out.promFile != "" {
		f.Output.PromFile = out.promFile
	}

	env, exec, err := loadExecutor(f, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	console := report.NewConsole(report.ConsoleConfig{Writer: cmd.OutOrStdout()})

	if out.probe {
		info, err := exec.Describe()
		if err != nil {
			return err
		}
		console.PrintProbe(info)
		return nil
	}

	cfg := f.BenchmarkConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	console.PrintHeader(f.Model, cfg)

	orch := benchmark.NewOrchestrator(env, exec, benchmark.WithLogger(logger))
	result, err := orch.Run(ctx, cfg)
	if err != nil {
		return err
	}
	console.PrintResult(result)

	if err := writeOutputs(f, cfg, result, logger); err != nil {
		return err
	}

	switch result.Outcome {
	case benchmark.OutcomeCancelled:
		return errRunInterrupted
	case benchmark.OutcomeMemoryLimit:
		return errMemoryAbort
	}
	return nil
}

// writeOutputs saves the result to every destination named in f.Output.
func writeOutputs(f *config.File, cfg benchmark.Config, result *benchmark.Result, logger *slog.Logger) error {
	if path := f.Output.JSON; path != "" {
		if err := report.WriteJSON(path, report.FromResult(f.Model, cfg, result)); err != nil {
			return err
		}
		logger.Info("report written", "path", path)
	}

	if path := f.Output.PromFile; path != "" {
		exporter := metrics.NewExporter()
		exporter.Observe(result.Summary(f.Model, cfg.Threads))
		if err := exporter.WriteTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Info("metrics written", "path", path)
	}

	if path := f.Output.History; path != "" {
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Append(f.Model, cfg, result)
		if err != nil {
			return err
		}
		logger.Info("run recorded", "id", rec.ID, "db", store.Path())
	}
	return nil
}
