package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/config"
	"github.com/wesleyorama2/inferbench/internal/report"
)

type sweepOptions struct {
	threadsList       []int
	requestsPerThread int
	json              string
	html              string
}

func newSweepCmd() *cobra.Command {
	o := &runOptions{}
	so := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the benchmark across several thread counts",
		Long: `Run one benchmark per thread count with a fixed per-thread load and print
how throughput and latency scale.

  inferbench sweep -m model.yaml --threads-list 1,2,4,8 --requests-per-thread 100 \
    --json sweep.json --html sweep.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, o, so)
		},
	}

	addRunFlags(cmd, o)
	cmd.Flags().IntSliceVar(&so.threadsList, "threads-list", benchmark.DefaultSweepThreads, "Thread counts to run")
	cmd.Flags().IntVar(&so.requestsPerThread, "requests-per-thread", config.DefaultRequestsPerThread, "Requests per worker thread in each step")
	cmd.Flags().StringVar(&so.json, "json", "", "Write the combined sweep result as JSON to this path")
	cmd.Flags().StringVar(&so.html, "html", "", "Write an HTML report with scaling charts to this path")

	return cmd
}

func runSweep(cmd *cobra.Command, o *runOptions, so *sweepOptions) error {
	logger := newLogger(cmd.ErrOrStderr(), o.verbose)

	f, err := loadRunConfig(cmd, o, logger)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threads-list") {
		f.Sweep.Threads = so.threadsList
	}
	if cmd.Flags().Changed("requests-per-thread") {
		f.Sweep.RequestsPerThread = so.requestsPerThread
	}
	if so.json != "" {
		f.Output.JSON = so.json
	}
	if so.html != "" {
		f.Output.HTML = so.html
	}
	if err := f.Validate(true); err != nil {
		return err
	}

	env, exec, err := loadExecutor(f, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	sc := f.SweepConfig()
	logger.Info("starting sweep", "threads", sc.ThreadCounts, "requests_per_thread", sc.RequestsPerThread)

	result, sweepErr := benchmark.Sweep(ctx, env, exec, sc, benchmark.WithLogger(logger))
	if result == nil {
		return sweepErr
	}

	console := report.NewConsole(report.ConsoleConfig{Writer: cmd.OutOrStdout()})
	console.PrintSweep(result)

	rep := report.NewSweepReport(f.Model, result)
	if path := f.Output.JSON; path != "" {
		if err := report.WriteJSON(path, rep); err != nil {
			return err
		}
		logger.Info("sweep report written", "path", path)
	}
	if path := f.Output.HTML; path != "" {
		if err := report.GenerateHTML(rep, path); err != nil {
			return err
		}
		logger.Info("HTML report written", "path", path)
	}
	return sweepErr
}
