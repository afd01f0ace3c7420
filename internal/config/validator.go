package config

import (
	"fmt"
	"strings"

	"github.com/wesleyorama2/inferbench/internal/executor"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the configuration for a single run.
//
// Returns nil if valid, or a *ValidationErrors containing every problem.
// The model path is only required when requireModel is set.
func (f *File) Validate(requireModel bool) error {
	errs := &ValidationErrors{}

	if requireModel && strings.TrimSpace(f.Model) == "" {
		errs.Add("model", "model path is required")
	}
	if f.Optimization != "" {
		if _, err := executor.ParseOptLevel(f.Optimization); err != nil {
			errs.Add("optimization", err.Error())
		}
	}
	if f.IntraOpThreads < 0 {
		errs.Add("intra_op_threads", "intra-op threads must be >= 0")
	}

	validateBenchmark(&f.Benchmark, errs)
	validateSweep(&f.Sweep, errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateBenchmark(b *BenchmarkSettings, errs *ValidationErrors) {
	if b.Threads != nil && *b.Threads <= 0 {
		errs.Add("benchmark.threads", fmt.Sprintf("threads must be greater than 0, got %d", *b.Threads))
	}
	if b.Requests != nil && *b.Requests < 0 {
		errs.Add("benchmark.requests", fmt.Sprintf("requests must be >= 0, got %d", *b.Requests))
	}
	if b.Warmup != nil && *b.Warmup < 0 {
		errs.Add("benchmark.warmup", fmt.Sprintf("warmup must be >= 0, got %d", *b.Warmup))
	}
	if b.SampleInterval < 0 {
		errs.Add("benchmark.sample_interval", "sample interval must not be negative")
	}
	if b.AbortOnMemoryLimit && b.MemoryLimitMB <= 0 {
		errs.Add("benchmark.abort_on_memory_limit", "requires a positive memory_limit_mb")
	}
}

func validateSweep(s *SweepSettings, errs *ValidationErrors) {
	for i, t := range s.Threads {
		if t <= 0 {
			errs.Add(fmt.Sprintf("sweep.threads[%d]", i), fmt.Sprintf("thread count must be greater than 0, got %d", t))
		}
	}
	if s.RequestsPerThread < 0 {
		errs.Add("sweep.requests_per_thread", "requests per thread must be >= 0")
	}
}
