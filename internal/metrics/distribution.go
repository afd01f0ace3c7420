// Package metrics summarizes benchmark measurements and exports them.
//
// Latency distributions are computed with an HDR histogram once all worker
// buffers have been merged, so recording never contends on a shared
// structure. Exporter publishes a finished run as Prometheus gauges.
package metrics

import (
	"github.com/HdrHistogram/hdrhistogram-go"
)

// HistogramConfig bounds the latency histogram.
type HistogramConfig struct {
	// Min is the smallest recordable value in microseconds (default: 1)
	Min int64

	// Max is the largest recordable value in microseconds (default: 1 hour)
	Max int64

	// SigFigs is the number of significant figures (default: 3)
	SigFigs int
}

// DefaultHistogramConfig returns the default histogram bounds.
func DefaultHistogramConfig() HistogramConfig {
	return HistogramConfig{
		Min:     1,
		Max:     3600000000, // 1 hour in microseconds
		SigFigs: 3,
	}
}

// Distribution describes a latency sample set in milliseconds.
//
// Percentiles here come from the histogram and carry its relative
// precision. Exact nearest-rank figures are computed separately.
type Distribution struct {
	Count  int64   `json:"count"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
	Mean   float64 `json:"mean_ms"`
	StdDev float64 `json:"stddev_ms"`
	P50    float64 `json:"p50_ms"`
	P90    float64 `json:"p90_ms"`
	P95    float64 `json:"p95_ms"`
	P99    float64 `json:"p99_ms"`
}

// NewDistribution builds a distribution from latencies in milliseconds
// using the default histogram bounds.
func NewDistribution(latenciesMs []float64) Distribution {
	return NewDistributionWithConfig(latenciesMs, DefaultHistogramConfig())
}

// NewDistributionWithConfig builds a distribution with custom bounds.
// Values outside the bounds are clamped.
func NewDistributionWithConfig(latenciesMs []float64, config HistogramConfig) Distribution {
	if len(latenciesMs) == 0 {
		return Distribution{}
	}

	hist := hdrhistogram.New(config.Min, config.Max, config.SigFigs)
	for _, ms := range latenciesMs {
		micros := int64(ms * 1000)
		if micros < config.Min {
			micros = config.Min
		}
		if micros > config.Max {
			micros = config.Max
		}
		// in range after clamping
		_ = hist.RecordValue(micros)
	}

	return Distribution{
		Count:  hist.TotalCount(),
		Min:    microsToMillis(hist.Min()),
		Max:    microsToMillis(hist.Max()),
		Mean:   hist.Mean() / 1000,
		StdDev: hist.StdDev() / 1000,
		P50:    microsToMillis(hist.ValueAtQuantile(50)),
		P90:    microsToMillis(hist.ValueAtQuantile(90)),
		P95:    microsToMillis(hist.ValueAtQuantile(95)),
		P99:    microsToMillis(hist.ValueAtQuantile(99)),
	}
}

func microsToMillis(v int64) float64 {
	return float64(v) / 1000
}
