package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/inferbench/internal/config"
	"github.com/wesleyorama2/inferbench/internal/executor"
	"github.com/wesleyorama2/inferbench/internal/monitor"
	"github.com/wesleyorama2/inferbench/internal/report"
)

// errMissingModel is returned when no model path was given.
var errMissingModel = errors.New("model path is required (-m/--model)")

// runOptions holds the flags shared by the root and sweep commands.
type runOptions struct {
	configPath         string
	model              string
	optimization       string
	intraOpThreads     int
	threads            int
	requests           int
	warmup             int
	memoryLimitMB      float64
	sampleInterval     time.Duration
	abortOnMemoryLimit bool
	inputSeed          uint64
	verbose            bool
}

// NewRootCmd builds the inferbench command tree.
func NewRootCmd() *cobra.Command {
	o := &runOptions{}
	out := &outputOptions{}

	cmd := &cobra.Command{
		Use:     "inferbench",
		Short:   "Benchmark model inference under controlled concurrency",
		Version: report.Version,
		Long: `InferBench runs a model executor from a pool of worker threads and reports
throughput, latency percentiles, CPU usage and peak memory.

  inferbench -m model.yaml -t 4 -n 1000
  inferbench -m model.yaml --probe
  inferbench sweep -m model.yaml --threads-list 1,2,4,8`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, o, out)
		},
	}

	addRunFlags(cmd, o)
	cmd.Flags().BoolVar(&out.probe, "probe", false, "Load the model, print its input size and summary, then exit")
	cmd.Flags().StringVarP(&out.json, "json", "j", "", "Write the result as JSON to this path")
	cmd.Flags().StringVar(&out.history, "history", "", "Append the run to this history database")
	cmd.Flags().StringVar(&out.promFile, "prom-file", "", "Write the result as Prometheus gauges in textfile format")

	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newValidateReportCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// Execute runs the command tree with os.Args and prints a fatal error as a
// single line on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Configuration file (YAML or JSON)")
	flags.StringVarP(&o.model, "model", "m", "", "Path to the model descriptor (required)")
	flags.StringVarP(&o.optimization, "optimization", "o", config.DefaultOptimization, "Optimization level: none, basic, extended, all")
	flags.IntVar(&o.intraOpThreads, "intra-op-threads", 1, "Parallelism inside a single inference call")
	flags.IntVarP(&o.threads, "threads", "t", config.DefaultThreads, "Number of worker threads")
	flags.IntVarP(&o.requests, "requests", "n", config.DefaultRequests, "Total number of inference requests")
	flags.IntVarP(&o.warmup, "warmup", "w", config.DefaultWarmup, "Untimed warmup rounds")
	flags.Float64VarP(&o.memoryLimitMB, "memory_limit", "l", 0, "Memory limit in MB (0 disables)")
	flags.DurationVar(&o.sampleInterval, "sample-interval", monitor.DefaultInterval, "Resource sampling interval")
	flags.BoolVar(&o.abortOnMemoryLimit, "abort-on-memory-limit", false, "Abort the run when the memory limit is exceeded")
	flags.Uint64Var(&o.inputSeed, "seed", 0, "Seed for the synthetic input (default 42)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
}

// loadRunConfig merges the config file, defaults and explicitly set flags.
// Flags win over file values.
func loadRunConfig(cmd *cobra.Command, o *runOptions, logger *slog.Logger) (*config.File, error) {
	f := &config.File{}
	if o.configPath != "" {
		var err error
		if f, err = config.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	config.ApplyDefaults(f)

	changed := cmd.Flags().Changed
	if changed("model") {
		f.Model = o.model
	}
	if changed("optimization") {
		f.Optimization = o.optimization
		if _, err := executor.ParseOptLevel(o.optimization); err != nil {
			logger.Warn("unknown optimization level, using all", "level", o.optimization)
			f.Optimization = executor.OptAll.String()
		}
	}
	if changed("intra-op-threads") {
		f.IntraOpThreads = o.intraOpThreads
	}
	b := &f.Benchmark
	if changed("threads") {
		b.Threads = &o.threads
	}
	if changed("requests") {
		b.Requests = &o.requests
	}
	if changed("warmup") {
		b.Warmup = &o.warmup
	}
	if changed("memory_limit") {
		b.MemoryLimitMB = o.memoryLimitMB
	}
	if changed("sample-interval") {
		b.SampleInterval = config.Duration(o.sampleInterval)
	}
	if changed("abort-on-memory-limit") {
		b.AbortOnMemoryLimit = o.abortOnMemoryLimit
	}
	if changed("seed") {
		b.InputSeed = o.inputSeed
	}

	if f.Model == "" {
		_ = cmd.Usage()
		return nil, errMissingModel
	}
	if err := f.Validate(true); err != nil {
		return nil, err
	}
	return f, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadExecutor creates the environment and loads the model into a dense
// executor. The caller closes the returned Env.
func loadExecutor(f *config.File, logger *slog.Logger) (*executor.Env, *executor.Dense, error) {
	level, err := executor.ParseOptLevel(f.Optimization)
	if err != nil {
		return nil, nil, err
	}

	env := executor.NewEnv(
		executor.WithLogger(logger),
		executor.WithIntraOpThreads(f.IntraOpThreads),
	)
	exec := executor.NewDense(env)

	logger.Info("loading model", "path", f.Model, "optimization", level)
	if err := exec.LoadModel(f.Model, level); err != nil {
		env.Close()
		return nil, nil, err
	}
	return env, exec, nil
}

// signalContext is cancelled on SIGINT or SIGTERM so an interrupted run
// still reports its partial result.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
