// Package config loads inferbench run configuration from YAML or JSON
// files.
//
// A configuration file supplies the same settings as the command-line
// flags; flags that are set explicitly take precedence.
//
// Example:
//
//	model: models/mlp.yaml
//	optimization: all
//	benchmark:
//	  threads: 4
//	  requests: 1000
//	  warmup: 10
//	  sample_interval: 100ms
//	sweep:
//	  threads: [1, 2, 4, 8]
//	  requests_per_thread: 100
//	output:
//	  json: result.json
package config

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the root of a configuration file.
type File struct {
	// Model is the path of the model descriptor
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Optimization is the graph optimization level: none, basic, extended, all
	Optimization string `json:"optimization,omitempty" yaml:"optimization,omitempty"`

	// IntraOpThreads is the per-call parallelism of the executor
	IntraOpThreads int `json:"intra_op_threads,omitempty" yaml:"intra_op_threads,omitempty"`

	Benchmark BenchmarkSettings `json:"benchmark" yaml:"benchmark"`
	Sweep     SweepSettings     `json:"sweep" yaml:"sweep"`
	Output    OutputSettings    `json:"output" yaml:"output"`
}

// BenchmarkSettings configures a single run.
type BenchmarkSettings struct {
	Threads            *int     `json:"threads,omitempty" yaml:"threads,omitempty"`
	Requests           *int     `json:"requests,omitempty" yaml:"requests,omitempty"`
	Warmup             *int     `json:"warmup,omitempty" yaml:"warmup,omitempty"`
	MemoryLimitMB      float64  `json:"memory_limit_mb,omitempty" yaml:"memory_limit_mb,omitempty"`
	SampleInterval     Duration `json:"sample_interval,omitempty" yaml:"sample_interval,omitempty"`
	AbortOnMemoryLimit bool     `json:"abort_on_memory_limit,omitempty" yaml:"abort_on_memory_limit,omitempty"`
	InputSeed          uint64   `json:"input_seed,omitempty" yaml:"input_seed,omitempty"`
}

// SweepSettings configures a thread sweep.
type SweepSettings struct {
	Threads           []int `json:"threads,omitempty" yaml:"threads,omitempty"`
	RequestsPerThread int   `json:"requests_per_thread,omitempty" yaml:"requests_per_thread,omitempty"`
}

// OutputSettings names the files a run writes.
type OutputSettings struct {
	JSON     string `json:"json,omitempty" yaml:"json,omitempty"`
	HTML     string `json:"html,omitempty" yaml:"html,omitempty"`
	PromFile string `json:"prom_file,omitempty" yaml:"prom_file,omitempty"`
	History  string `json:"history,omitempty" yaml:"history,omitempty"`
}

// Duration is a time.Duration that decodes from Go duration strings or
// bare seconds.
type Duration time.Duration

// GetDuration returns the duration or a default if zero.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := ParseDurationString(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	dur, err := ParseDurationString(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}
