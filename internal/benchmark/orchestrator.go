package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wesleyorama2/inferbench/internal/executor"
	"github.com/wesleyorama2/inferbench/internal/metrics"
	"github.com/wesleyorama2/inferbench/internal/monitor"
)

const tracerName = "inferbench.benchmark"

// Orchestrator runs one benchmark through its phases:
// idle, warmup, running, stopping and aggregated.
//
// An Orchestrator is single-use. Phase may be polled from other goroutines
// while Run is in progress.
type Orchestrator struct {
	env    *executor.Env
	exec   executor.Executor
	source monitor.Source
	logger *slog.Logger

	phase *metrics.PhaseTracker
	ran   atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the logger taken from the Env.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSource sets the resource counter source. Default: /proc.
func WithSource(source monitor.Source) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// NewOrchestrator creates an orchestrator driving exec. exec must already
// have a model loaded.
func NewOrchestrator(env *executor.Env, exec executor.Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		env:    env,
		exec:   exec,
		logger: env.Logger(),
		phase:  metrics.NewPhaseTracker(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() metrics.Phase {
	return o.phase.Current()
}

// PhaseHistory returns every phase transition so far.
func (o *Orchestrator) PhaseHistory() []metrics.PhaseChange {
	return o.phase.History()
}

// Run executes the benchmark described by cfg and returns its result.
//
// Cancelling ctx stops workers before their next claim and yields a
// partial result with OutcomeCancelled. Warmup failures are fatal.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if !o.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	if o.exec == nil {
		return nil, ErrNoExecutor
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "benchmark.Orchestrator.Run",
		trace.WithAttributes(
			attribute.Int("benchmark.threads", cfg.Threads),
			attribute.Int("benchmark.requests", cfg.Requests),
			attribute.Int("benchmark.warmup", cfg.WarmupRounds),
		),
	)
	defer span.End()

	if err := cfg.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid config")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = cfg.WithDefaults()

	input := GenerateInput(o.exec.InputSize(), cfg.InputSeed)

	if err := o.warmup(ctx, cfg, input); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "warmup failed")
		return nil, err
	}

	result := o.runTimed(ctx, cfg, input)

	span.SetAttributes(
		attribute.String("benchmark.result.outcome", string(result.Outcome)),
		attribute.Int("benchmark.result.completed", result.Completed),
		attribute.Int("benchmark.result.failures", result.Failures),
		attribute.Float64("benchmark.result.qps", result.QPS),
		attribute.Float64("benchmark.result.p99_ms", result.P99LatencyMs),
	)
	span.SetStatus(codes.Ok, "benchmark completed")

	return result, nil
}

func (o *Orchestrator) warmup(ctx context.Context, cfg Config, input []float32) error {
	o.phase.Set(metrics.PhaseWarmup)
	if cfg.WarmupRounds > 0 {
		o.logger.Info("warming up", "rounds", cfg.WarmupRounds)
	}

	for i := 0; i < cfg.WarmupRounds; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := runOnce(o.exec, input); err != nil {
			return fmt.Errorf("warmup round %d failed: %w", i+1, err)
		}
	}
	return nil
}

func (o *Orchestrator) runTimed(ctx context.Context, cfg Config, input []float32) *Result {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	source := o.source
	if source == nil {
		proc, err := monitor.NewProcSource()
		if err != nil {
			o.logger.Warn("resource sampling unavailable", "error", err)
			source = monitor.Unavailable(err)
		} else {
			source = proc
		}
	}

	samplerOpts := []monitor.SamplerOption{
		monitor.WithInterval(cfg.SampleInterval),
		monitor.WithLogger(o.logger),
	}
	var watchdog *monitor.Watchdog
	if cfg.AbortOnMemoryLimit && cfg.MemoryLimitMB > 0 {
		samplerOpts = append(samplerOpts, monitor.WithOnSample(func(monitor.ResourceSample) {
			if watchdog.CheckMemoryLimit(cfg.MemoryLimitMB) {
				o.logger.Warn("memory limit exceeded, aborting run", "limit_mb", cfg.MemoryLimitMB)
				cancel(ErrMemoryLimitExceeded)
			}
		}))
	}
	sampler := monitor.NewSampler(source, samplerOpts...)
	watchdog = monitor.NewWatchdog(sampler)

	o.logger.Info("starting benchmark",
		"threads", cfg.Threads,
		"requests", cfg.Requests,
		"sample_interval", sampler.Interval(),
	)

	if err := sampler.Start(runCtx); err != nil {
		o.logger.Warn("failed to start sampler", "error", err)
	}
	o.phase.Set(metrics.PhaseRunning)

	dispatcher := NewDispatcher(cfg.Requests)
	pool := NewPool(cfg.Threads, o.logger)

	start := time.Now()
	pool.Run(runCtx, dispatcher, o.exec, input)
	elapsed := time.Since(start)

	o.phase.Set(metrics.PhaseStopping)
	samples := sampler.Stop()

	// A run that claimed every unit is complete even if the context was
	// cancelled while the last calls were in flight.
	outcome := OutcomeCompleted
	if runCtx.Err() != nil && dispatcher.Remaining() > 0 {
		outcome = OutcomeCancelled
		if errors.Is(context.Cause(runCtx), ErrMemoryLimitExceeded) {
			outcome = OutcomeMemoryLimit
		}
	}

	completed := pool.Completed()
	units := cfg.Requests
	if outcome != OutcomeCompleted {
		units = completed
	}

	result := ComputeResult(pool.Buffers(), monitor.CPUValues(samples), monitor.MemoryValues(samples), elapsed.Seconds(), units)
	result.Completed = completed
	result.Failures = pool.Failures()
	result.Outcome = outcome
	result.Elapsed = elapsed
	result.Samples = samples

	if cfg.MemoryLimitMB > 0 && result.PeakMemoryMB > cfg.MemoryLimitMB {
		o.logger.Warn("peak memory above limit",
			"peak_mb", result.PeakMemoryMB,
			"limit_mb", cfg.MemoryLimitMB,
		)
	}

	o.phase.Set(metrics.PhaseAggregated)

	o.logger.Info("benchmark finished",
		"outcome", outcome,
		"completed", completed,
		"failures", result.Failures,
		"elapsed", elapsed,
	)
	return &result
}
