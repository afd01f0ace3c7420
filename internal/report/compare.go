package report

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Delta is the change of one metric between two reports.
type Delta struct {
	Metric         string  `json:"metric"`
	Base           float64 `json:"base"`
	Candidate      float64 `json:"candidate"`
	Percent        float64 `json:"percent"`
	HigherIsBetter bool    `json:"higher_is_better"`
}

// Improved reports whether the candidate is better than the base.
func (d Delta) Improved() bool {
	if d.HigherIsBetter {
		return d.Candidate > d.Base
	}
	return d.Candidate < d.Base
}

var comparedMetrics = []struct {
	name           string
	path           string
	higherIsBetter bool
}{
	{"QPS", "result.qps", true},
	{"Avg Latency", "result.avg_latency_ms", false},
	{"P99 Latency", "result.p99_latency_ms", false},
	{"Avg CPU Usage", "result.avg_cpu_usage", false},
	{"Peak Memory", "result.peak_memory_mb", false},
}

// Compare computes per-metric deltas between two run reports.
func Compare(base, candidate []byte) ([]Delta, error) {
	if !gjson.ValidBytes(base) {
		return nil, fmt.Errorf("base report is not valid JSON")
	}
	if !gjson.ValidBytes(candidate) {
		return nil, fmt.Errorf("candidate report is not valid JSON")
	}

	deltas := make([]Delta, 0, len(comparedMetrics))
	for _, m := range comparedMetrics {
		b := gjson.GetBytes(base, m.path)
		c := gjson.GetBytes(candidate, m.path)
		if !b.Exists() {
			return nil, fmt.Errorf("base report is missing %s", m.path)
		}
		if !c.Exists() {
			return nil, fmt.Errorf("candidate report is missing %s", m.path)
		}

		d := Delta{
			Metric:         m.name,
			Base:           b.Float(),
			Candidate:      c.Float(),
			HigherIsBetter: m.higherIsBetter,
		}
		if d.Base != 0 {
			d.Percent = (d.Candidate - d.Base) / d.Base * 100
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// CompareFiles reads two run reports and compares them.
func CompareFiles(basePath, candidatePath string) ([]Delta, error) {
	base, err := os.ReadFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read base report: %w", err)
	}
	candidate, err := os.ReadFile(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate report: %w", err)
	}
	return Compare(base, candidate)
}
