// Package benchmark drives an executor under controlled concurrency and
// summarizes the run.
//
// A run distributes a fixed number of work units over a pool of worker
// goroutines through a shared atomic counter, samples host CPU and process
// memory on the side, and aggregates everything into an immutable Result
// once all goroutines have been joined.
//
// Example usage:
//
//	env := executor.NewEnv()
//	defer env.Close()
//	exec := executor.NewDense(env)
//	_ = exec.LoadModel("model.yaml", executor.OptAll)
//	orch := benchmark.NewOrchestrator(env, exec)
//	result, _ := orch.Run(ctx, benchmark.Config{Threads: 4, Requests: 100})
//	fmt.Printf("QPS: %.2f\n", result.QPS)
package benchmark

import (
	"errors"
	"fmt"
	"time"

	"github.com/wesleyorama2/inferbench/internal/metrics"
	"github.com/wesleyorama2/inferbench/internal/monitor"
)

// DefaultInputSeed seeds the synthetic input when Config.InputSeed is zero.
const DefaultInputSeed = 42

var (
	// ErrAlreadyRun is returned when Run is called twice on an Orchestrator.
	ErrAlreadyRun = errors.New("orchestrator has already run")

	// ErrNoExecutor is returned when an Orchestrator has no executor.
	ErrNoExecutor = errors.New("no executor configured")

	// ErrInvalidConfig matches every *ValidationError.
	ErrInvalidConfig = errors.New("invalid benchmark configuration")

	// ErrMemoryLimitExceeded is the cancellation cause of a run aborted by
	// the memory watchdog.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// Config controls a single benchmark run.
type Config struct {
	// Threads is the number of worker goroutines. Must be > 0.
	Threads int `json:"threads" yaml:"threads"`

	// Requests is the total number of inference calls. Zero is allowed.
	Requests int `json:"requests" yaml:"requests"`

	// WarmupRounds is the number of untimed sequential calls before the run.
	WarmupRounds int `json:"warmup_rounds" yaml:"warmup_rounds"`

	// MemoryLimitMB is the watchdog limit. Zero or negative disables it.
	MemoryLimitMB float64 `json:"memory_limit_mb,omitempty" yaml:"memory_limit_mb"`

	// SampleInterval is the resource sampling cadence (default: 100ms)
	SampleInterval time.Duration `json:"sample_interval,omitempty" yaml:"sample_interval"`

	// AbortOnMemoryLimit cancels the run when the watchdog trips.
	AbortOnMemoryLimit bool `json:"abort_on_memory_limit,omitempty" yaml:"abort_on_memory_limit"`

	// InputSeed seeds the synthetic input (default: 42)
	InputSeed uint64 `json:"input_seed,omitempty" yaml:"input_seed"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Threads <= 0 {
		return &ValidationError{Field: "threads", Message: fmt.Sprintf("threads must be > 0, got %d", c.Threads)}
	}
	if c.Requests < 0 {
		return &ValidationError{Field: "requests", Message: fmt.Sprintf("requests must be >= 0, got %d", c.Requests)}
	}
	if c.WarmupRounds < 0 {
		return &ValidationError{Field: "warmup_rounds", Message: fmt.Sprintf("warmup rounds must be >= 0, got %d", c.WarmupRounds)}
	}
	if c.SampleInterval < 0 {
		return &ValidationError{Field: "sample_interval", Message: "sample interval must not be negative"}
	}
	return nil
}

// WithDefaults returns a copy of c with zero-valued optional fields filled.
func (c Config) WithDefaults() Config {
	if c.SampleInterval == 0 {
		c.SampleInterval = monitor.DefaultInterval
	}
	if c.InputSeed == 0 {
		c.InputSeed = DefaultInputSeed
	}
	return c
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Outcome describes how a run ended.
type Outcome string

const (
	// OutcomeCompleted means every unit was claimed.
	OutcomeCompleted Outcome = "completed"

	// OutcomeCancelled means the context was cancelled before the
	// dispatcher was exhausted.
	OutcomeCancelled Outcome = "cancelled"

	// OutcomeMemoryLimit means the memory watchdog aborted the run.
	OutcomeMemoryLimit Outcome = "memory_limit"
)

// Result is the summary of one run. It is built once and never mutated.
type Result struct {
	// QPS is completed units per wall-clock second of the timed phase.
	QPS float64 `json:"qps"`

	// AvgLatencyMs is the arithmetic mean of successful call latencies.
	AvgLatencyMs float64 `json:"avg_latency_ms"`

	// P99LatencyMs is the nearest-rank 99th percentile.
	P99LatencyMs float64 `json:"p99_latency_ms"`

	// AvgCPUUsage is the mean of sampled host CPU utilization.
	AvgCPUUsage float64 `json:"avg_cpu_usage"`

	// PeakMemoryMB is the largest sampled resident memory.
	PeakMemoryMB float64 `json:"peak_memory_mb"`

	Completed int           `json:"completed"`
	Failures  int           `json:"failures"`
	Outcome   Outcome       `json:"outcome"`
	Elapsed   time.Duration `json:"elapsed"`

	// Latency is the histogram-backed distribution of successful calls.
	Latency metrics.Distribution `json:"latency"`

	Samples []monitor.ResourceSample `json:"samples,omitempty"`
}

// Summary converts r for the metrics exporter.
func (r *Result) Summary(model string, threads int) metrics.Summary {
	return metrics.Summary{
		Model:        model,
		Threads:      threads,
		QPS:          r.QPS,
		AvgLatencyMs: r.AvgLatencyMs,
		P99LatencyMs: r.P99LatencyMs,
		AvgCPUUsage:  r.AvgCPUUsage,
		PeakMemoryMB: r.PeakMemoryMB,
		Failures:     r.Failures,
	}
}
