package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/monitor"
)

// Defaults for settings a file or the command line leaves unset.
const (
	DefaultThreads           = 1
	DefaultRequests          = 100
	DefaultWarmup            = 10
	DefaultOptimization      = "all"
	DefaultRequestsPerThread = 100
)

// LoadConfig loads a configuration file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
func LoadConfig(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*File, error) {
	var file File

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	return &file, nil
}

// ParseDurationString parses a duration string.
//
// Supported formats:
//   - Standard Go duration: "100ms", "2s", "1m30s"
//   - Seconds as integer: "30" (treated as 30 seconds)
func ParseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil && fmt.Sprint(seconds) == s {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// ApplyDefaults fills every unset setting with its default.
func ApplyDefaults(f *File) {
	if f.Optimization == "" {
		f.Optimization = DefaultOptimization
	}
	if f.IntraOpThreads == 0 {
		f.IntraOpThreads = 1
	}

	b := &f.Benchmark
	if b.Threads == nil {
		n := DefaultThreads
		b.Threads = &n
	}
	if b.Requests == nil {
		n := DefaultRequests
		b.Requests = &n
	}
	if b.Warmup == nil {
		n := DefaultWarmup
		b.Warmup = &n
	}
	if b.SampleInterval == 0 {
		b.SampleInterval = Duration(monitor.DefaultInterval)
	}
	if b.InputSeed == 0 {
		b.InputSeed = benchmark.DefaultInputSeed
	}

	if len(f.Sweep.Threads) == 0 {
		f.Sweep.Threads = append([]int(nil), benchmark.DefaultSweepThreads...)
	}
	if f.Sweep.RequestsPerThread == 0 {
		f.Sweep.RequestsPerThread = DefaultRequestsPerThread
	}
}

// BenchmarkConfig converts the benchmark settings. Unset counts are zero and
// an unset sample interval is monitor.DefaultInterval.
func (f *File) BenchmarkConfig() benchmark.Config {
	b := f.Benchmark
	cfg := benchmark.Config{
		MemoryLimitMB:      b.MemoryLimitMB,
		SampleInterval:     b.SampleInterval.GetDuration(monitor.DefaultInterval),
		AbortOnMemoryLimit: b.AbortOnMemoryLimit,
		InputSeed:          b.InputSeed,
	}
	if b.Threads != nil {
		cfg.Threads = *b.Threads
	}
	if b.Requests != nil {
		cfg.Requests = *b.Requests
	}
	if b.Warmup != nil {
		cfg.WarmupRounds = *b.Warmup
	}
	return cfg
}

// SweepConfig converts the sweep settings, using the benchmark settings as
// the base of every step.
func (f *File) SweepConfig() benchmark.SweepConfig {
	return benchmark.SweepConfig{
		ThreadCounts:      append([]int(nil), f.Sweep.Threads...),
		RequestsPerThread: f.Sweep.RequestsPerThread,
		Base:              f.BenchmarkConfig(),
	}
}
