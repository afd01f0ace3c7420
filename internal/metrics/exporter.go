package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inferbench"

// Summary is the subset of a run result published by the Exporter.
type Summary struct {
	Model        string
	Threads      int
	QPS          float64
	AvgLatencyMs float64
	P99LatencyMs float64
	AvgCPUUsage  float64
	PeakMemoryMB float64
	Failures     int
}

// Exporter publishes run summaries as Prometheus gauges on a private
// registry.
type Exporter struct {
	registry *prometheus.Registry

	qps        *prometheus.GaugeVec
	latencyAvg *prometheus.GaugeVec
	latencyP99 *prometheus.GaugeVec
	cpuAvg     *prometheus.GaugeVec
	memoryPeak *prometheus.GaugeVec
	failures   *prometheus.GaugeVec
}

// NewExporter creates an exporter with all gauges registered.
func NewExporter() *Exporter {
	labels := []string{"model", "threads"}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	e := &Exporter{
		registry:   prometheus.NewRegistry(),
		qps:        gauge("qps", "Completed inference calls per second."),
		latencyAvg: gauge("latency_avg_ms", "Mean latency of completed calls in milliseconds."),
		latencyP99: gauge("latency_p99_ms", "Nearest-rank 99th percentile latency in milliseconds."),
		cpuAvg:     gauge("cpu_avg_percent", "Mean host CPU utilization during the run."),
		memoryPeak: gauge("memory_peak_mb", "Peak resident memory of the process in MB."),
		failures:   gauge("failures_total", "Failed inference calls during the run."),
	}
	e.registry.MustRegister(e.qps, e.latencyAvg, e.latencyP99, e.cpuAvg, e.memoryPeak, e.failures)
	return e
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe sets every gauge from s.
func (e *Exporter) Observe(s Summary) {
	labels := prometheus.Labels{"model": s.Model, "threads": strconv.Itoa(s.Threads)}

	e.qps.With(labels).Set(s.QPS)
	e.latencyAvg.With(labels).Set(s.AvgLatencyMs)
	e.latencyP99.With(labels).Set(s.P99LatencyMs)
	e.cpuAvg.With(labels).Set(s.AvgCPUUsage)
	e.memoryPeak.With(labels).Set(s.PeakMemoryMB)
	e.failures.With(labels).Set(float64(s.Failures))
}

// WriteTextfile writes all gauges to path in the node_exporter textfile
// collector format.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}
