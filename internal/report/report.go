// Package report renders benchmark results for people and machines.
//
// It writes the JSON report consumed by automation, prints the console
// summary, validates and compares saved reports, and renders HTML charts
// for thread sweeps.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/metrics"
)

// Report is the JSON document saved with --json.
type Report struct {
	Model  string        `json:"model"`
	Config ConfigSection `json:"config"`
	Result ResultSection `json:"result"`

	// Latency is the histogram summary, omitted when nothing completed.
	Latency *metrics.Distribution `json:"latency,omitempty"`

	// Timestamp is when the report was generated.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ConfigSection echoes the run configuration.
type ConfigSection struct {
	Threads      int `json:"threads"`
	Requests     int `json:"requests"`
	WarmupRounds int `json:"warmup_rounds"`
}

// ResultSection holds the headline figures.
type ResultSection struct {
	QPS          float64 `json:"qps"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P99LatencyMs float64 `json:"p99_latency_ms"`
	AvgCPUUsage  float64 `json:"avg_cpu_usage"`
	PeakMemoryMB float64 `json:"peak_memory_mb"`
	Failures     int     `json:"failures"`
	Outcome      string  `json:"outcome"`
}

// SweepReport is the JSON document saved by the sweep command.
type SweepReport struct {
	Model     string                `json:"model"`
	Timestamp time.Time             `json:"timestamp"`
	Steps     []benchmark.SweepStep `json:"steps"`
	Skipped   []int                 `json:"skipped,omitempty"`
}

// NewSweepReport builds a sweep report. Per-step resource samples are
// dropped to keep the document small.
func NewSweepReport(model string, s *benchmark.SweepResult) *SweepReport {
	rep := &SweepReport{
		Model:     model,
		Timestamp: time.Now().UTC(),
		Skipped:   append([]int(nil), s.Skipped...),
	}
	for _, step := range s.Steps {
		step.Result.Samples = nil
		rep.Steps = append(rep.Steps, step)
	}
	return rep
}

// FromResult builds a report for one run.
func FromResult(model string, cfg benchmark.Config, r *benchmark.Result) *Report {
	rep := &Report{
		Model: model,
		Config: ConfigSection{
			Threads:      cfg.Threads,
			Requests:     cfg.Requests,
			WarmupRounds: cfg.WarmupRounds,
		},
		Timestamp: time.Now().UTC(),
	}
	if r != nil {
		rep.Result = ResultSection{
			QPS:          r.QPS,
			AvgLatencyMs: r.AvgLatencyMs,
			P99LatencyMs: r.P99LatencyMs,
			AvgCPUUsage:  r.AvgCPUUsage,
			PeakMemoryMB: r.PeakMemoryMB,
			Failures:     r.Failures,
			Outcome:      string(r.Outcome),
		}
		if r.Latency.Count > 0 {
			dist := r.Latency
			rep.Latency = &dist
		}
	}
	return rep
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Load reads a single-run report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &rep, nil
}
