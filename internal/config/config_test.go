package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/monitor"
)

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `
model: models/mlp.yaml
optimization: extended
intra_op_threads: 2
benchmark:
  threads: 4
  requests: 0
  warmup: 3
  memory_limit_mb: 512
  sample_interval: 50ms
  abort_on_memory_limit: true
sweep:
  threads: [1, 3]
  requests_per_thread: 20
output:
  json: out.json
  history: runs.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if file.Model != "models/mlp.yaml" {
		t.Errorf("Model = %q", file.Model)
	}
	if file.Optimization != "extended" {
		t.Errorf("Optimization = %q", file.Optimization)
	}
	if file.Benchmark.Requests == nil || *file.Benchmark.Requests != 0 {
		t.Errorf("Requests = %v, want explicit 0", file.Benchmark.Requests)
	}
	if got := time.Duration(file.Benchmark.SampleInterval); got != 50*time.Millisecond {
		t.Errorf("SampleInterval = %v, want 50ms", got)
	}
	if file.Output.History != "runs.db" {
		t.Errorf("Output.History = %q", file.Output.History)
	}

	cfg := file.BenchmarkConfig()
	want := benchmark.Config{
		Threads:            4,
		Requests:           0,
		WarmupRounds:       3,
		MemoryLimitMB:      512,
		SampleInterval:     50 * time.Millisecond,
		AbortOnMemoryLimit: true,
	}
	if cfg != want {
		t.Errorf("BenchmarkConfig() = %+v, want %+v", cfg, want)
	}

	sweep := file.SweepConfig()
	if len(sweep.ThreadCounts) != 2 || sweep.RequestsPerThread != 20 || sweep.Base.WarmupRounds != 3 {
		t.Errorf("SweepConfig() = %+v", sweep)
	}
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{"model": "m.yaml", "benchmark": {"threads": 2, "sample_interval": "2s"}}`)

	file, err := ParseConfig(data, "run.json")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if file.Benchmark.Threads == nil || *file.Benchmark.Threads != 2 {
		t.Errorf("Threads = %v, want 2", file.Benchmark.Threads)
	}
	if got := time.Duration(file.Benchmark.SampleInterval); got != 2*time.Second {
		t.Errorf("SampleInterval = %v, want 2s", got)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"bad json", `{"model":`, "c.json"},
		{"bad yaml", "benchmark: [", "c.yaml"},
		{"bad duration", "benchmark:\n  sample_interval: soon\n", "c.yml"},
		{"unknown extension", "benchmark: [", "c.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data), tt.path); err == nil {
				t.Error("ParseConfig() expected error")
			}
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig() error = %v, want ErrNotExist", err)
	}
}

func TestParseDurationString(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"100ms", 100 * time.Millisecond, false},
		{"1m30s", 90 * time.Second, false},
		{"30", 30 * time.Second, false},
		{"30x", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDurationString(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDurationString(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDurationString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	file := &File{}
	ApplyDefaults(file)

	cfg := file.BenchmarkConfig()
	if cfg.Threads != DefaultThreads || cfg.Requests != DefaultRequests || cfg.WarmupRounds != DefaultWarmup {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SampleInterval != 100*time.Millisecond {
		t.Errorf("SampleInterval = %v, want 100ms", cfg.SampleInterval)
	}
	if file.Optimization != "all" {
		t.Errorf("Optimization = %q, want all", file.Optimization)
	}
	if len(file.Sweep.Threads) != 5 || file.Sweep.RequestsPerThread != DefaultRequestsPerThread {
		t.Errorf("sweep defaults = %+v", file.Sweep)
	}
}

func TestApplyDefaults_KeepsExplicitZeroThreads(t *testing.T) {
	file, err := ParseConfig([]byte("benchmark:\n  threads: 0\n"), "run.yaml")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	ApplyDefaults(file)

	if file.Benchmark.Threads == nil || *file.Benchmark.Threads != 0 {
		t.Errorf("Threads = %v, want explicit 0", file.Benchmark.Threads)
	}
	if err := file.Validate(false); err == nil {
		t.Error("Validate() expected error for threads: 0")
	}
}

func TestBenchmarkConfig_DefaultSampleInterval(t *testing.T) {
	cfg := (&File{}).BenchmarkConfig()
	if cfg.SampleInterval != monitor.DefaultInterval {
		t.Errorf("SampleInterval = %v, want %v", cfg.SampleInterval, monitor.DefaultInterval)
	}
}

func TestValidate(t *testing.T) {
	neg, zero, negTwo := -1, 0, -2

	tests := []struct {
		name         string
		file         File
		requireModel bool
		wantFields   []string
	}{
		{
			name:         "valid",
			file:         File{Model: "m.yaml"},
			requireModel: true,
		},
		{
			name:         "missing model",
			file:         File{},
			requireModel: true,
			wantFields:   []string{"model"},
		},
		{
			name:       "model optional",
			file:       File{},
			wantFields: nil,
		},
		{
			name:       "explicit zero threads",
			file:       File{Benchmark: BenchmarkSettings{Threads: &zero}},
			wantFields: []string{"benchmark.threads"},
		},
		{
			name: "collects every problem",
			file: File{
				Optimization: "turbo",
				Benchmark: BenchmarkSettings{
					Threads:            &negTwo,
					Requests:           &neg,
					Warmup:             &neg,
					AbortOnMemoryLimit: true,
				},
				Sweep: SweepSettings{Threads: []int{1, 0}},
			},
			wantFields: []string{
				"optimization",
				"benchmark.threads",
				"benchmark.requests",
				"benchmark.warmup",
				"benchmark.abort_on_memory_limit",
				"sweep.threads[1]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.file.Validate(tt.requireModel)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var errs *ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() error = %v, want *ValidationErrors", err)
			}
			if len(errs.Errors) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(errs.Errors), len(tt.wantFields), err)
			}
			for i, field := range tt.wantFields {
				if errs.Errors[i].Field != field {
					t.Errorf("Errors[%d].Field = %q, want %q", i, errs.Errors[i].Field, field)
				}
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := &ValidationErrors{}
	if errs.Error() != "no validation errors" {
		t.Errorf("empty Error() = %q", errs.Error())
	}

	errs.Add("a", "first")
	if errs.Error() != "validation error on field 'a': first" {
		t.Errorf("single Error() = %q", errs.Error())
	}

	errs.Add("", "second")
	msg := errs.Error()
	if !strings.HasPrefix(msg, "2 validation errors:") || !strings.Contains(msg, "validation error: second") {
		t.Errorf("multi Error() = %q", msg)
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalJSON()
	if err != nil || string(b) != `"1.5s"` {
		t.Errorf("MarshalJSON() = %s, %v", b, err)
	}
}
