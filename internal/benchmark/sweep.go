package benchmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/wesleyorama2/inferbench/internal/executor"
)

// ErrSweepIncomplete is returned with the partial result when a step ended
// early or steps were skipped because ctx was cancelled.
var ErrSweepIncomplete = errors.New("sweep incomplete")

// DefaultSweepThreads are the thread counts a sweep covers when none are
// given.
var DefaultSweepThreads = []int{1, 2, 4, 8, 16}

// SweepConfig controls a thread-count sweep.
type SweepConfig struct {
	// ThreadCounts are run in order (default: DefaultSweepThreads)
	ThreadCounts []int

	// RequestsPerThread scales the request count of each step so every
	// step keeps the same per-worker load.
	RequestsPerThread int

	// Base supplies the remaining settings for every step. Its Threads and
	// Requests are overridden.
	Base Config
}

// SweepStep is the outcome of one step. A failed step has a zero Result
// and a non-empty Error.
type SweepStep struct {
	Threads  int    `json:"threads"`
	Requests int    `json:"requests"`
	Result   Result `json:"result"`
	Error    string `json:"error,omitempty"`
}

// SweepResult collects all steps in run order.
type SweepResult struct {
	Steps []SweepStep `json:"steps"`

	// Skipped lists the thread counts never run because ctx was cancelled.
	Skipped []int `json:"skipped,omitempty"`
}

// Failed reports how many steps failed.
func (s *SweepResult) Failed() int {
	n := 0
	for _, step := range s.Steps {
		if step.Error != "" {
			n++
		}
	}
	return n
}

// Incomplete reports how many steps ran but did not finish every request.
func (s *SweepResult) Incomplete() int {
	n := 0
	for _, step := range s.Steps {
		if step.Error == "" && step.Result.Outcome != OutcomeCompleted {
			n++
		}
	}
	return n
}

// Sweep runs one benchmark per thread count with a fresh Orchestrator each.
//
// A failing step is recorded and the sweep moves on. Cancelling ctx ends
// the current step early and skips the rest. Whenever a step ended early
// or was skipped, the partial result is returned with ErrSweepIncomplete.
func Sweep(ctx context.Context, env *executor.Env, exec executor.Executor, sc SweepConfig, opts ...Option) (*SweepResult, error) {
	if exec == nil {
		return nil, ErrNoExecutor
	}
	threads := sc.ThreadCounts
	if len(threads) == 0 {
		threads = DefaultSweepThreads
	}
	if sc.RequestsPerThread < 0 {
		return nil, &ValidationError{Field: "requests_per_thread", Message: "requests per thread must be >= 0"}
	}
	for _, t := range threads {
		if t <= 0 {
			return nil, &ValidationError{Field: "threads", Message: fmt.Sprintf("thread counts must be > 0, got %d", t)}
		}
	}

	logger := env.Logger()
	result := &SweepResult{}

	for i, t := range threads {
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, threads[i:]...)
			logger.Warn("sweep interrupted", "skipped_threads", result.Skipped)
			break
		}

		cfg := sc.Base
		cfg.Threads = t
		cfg.Requests = sc.RequestsPerThread * t

		step := SweepStep{Threads: t, Requests: cfg.Requests}
		res, err := NewOrchestrator(env, exec, opts...).Run(ctx, cfg)
		if err != nil {
			logger.Warn("sweep step failed", "threads", t, "error", err)
			step.Error = err.Error()
		} else {
			step.Result = *res
			if res.Outcome != OutcomeCompleted {
				logger.Warn("sweep step ended early", "threads", t, "outcome", res.Outcome, "completed", res.Completed)
			} else {
				logger.Info("sweep step finished", "threads", t, "qps", res.QPS, "avg_latency_ms", res.AvgLatencyMs)
			}
		}
		result.Steps = append(result.Steps, step)
	}

	if len(result.Steps) > 0 && result.Failed() == len(result.Steps) {
		return result, errors.New("every sweep step failed")
	}
	if n := result.Incomplete(); n > 0 || len(result.Skipped) > 0 {
		return result, fmt.Errorf("%w: %d of %d steps ended early, %d skipped",
			ErrSweepIncomplete, n, len(threads), len(result.Skipped))
	}
	return result, nil
}
