package benchmark

import (
	"math"
	"sort"

	"github.com/wesleyorama2/inferbench/internal/metrics"
)

// ComputeResult aggregates joined worker buffers and resource samples.
//
// requests is the number of units the throughput is computed over. The
// inputs are never modified, and identical inputs always produce identical
// results.
func ComputeResult(buffers [][]float64, cpu, mem []float64, elapsedSeconds float64, requests int) Result {
	var r Result

	if elapsedSeconds > 0 {
		r.QPS = float64(requests) / elapsedSeconds
	}

	all := flatten(buffers)
	if len(all) > 0 {
		sum := 0.0
		for _, v := range all {
			sum += v
		}
		r.AvgLatencyMs = sum / float64(len(all))

		sort.Float64s(all)
		r.P99LatencyMs = Percentile(all, 0.99)
		r.Latency = metrics.NewDistribution(all)
	}

	r.AvgCPUUsage = mean(cpu)
	r.PeakMemoryMB = peak(mem)
	return r
}

// Percentile returns the nearest-rank percentile of an ascending slice.
//
// The index is floor(p*N) clamped to N-1, so for [1..100] the 0.99
// percentile is 100. An empty slice returns 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func flatten(buffers [][]float64) []float64 {
	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	out := make([]float64, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func peak(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
