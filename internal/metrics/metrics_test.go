package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewDistribution_Empty(t *testing.T) {
	d := NewDistribution(nil)
	if d != (Distribution{}) {
		t.Errorf("NewDistribution(nil) = %+v, want zero value", d)
	}
}

func TestNewDistribution(t *testing.T) {
	latencies := make([]float64, 0, 100)
	for i := 1; i <= 100; i++ {
		latencies = append(latencies, float64(i))
	}

	d := NewDistribution(latencies)

	if d.Count != 100 {
		t.Errorf("Count = %d, want 100", d.Count)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Min", d.Min, 1},
		{"Max", d.Max, 100},
		{"Mean", d.Mean, 50.5},
		{"P50", d.P50, 50},
		{"P90", d.P90, 90},
		{"P99", d.P99, 99},
	}
	for _, tt := range tests {
		// 3 significant figures
		if diff := tt.got - tt.want; diff > tt.want*0.001+0.001 || diff < -tt.want*0.001-0.001 {
			t.Errorf("%s = %v, want ~%v", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewDistribution_Clamps(t *testing.T) {
	d := NewDistributionWithConfig([]float64{0, -5, 1e12}, HistogramConfig{Min: 1, Max: 1000000, SigFigs: 3})

	if d.Count != 3 {
		t.Fatalf("Count = %d, want 3", d.Count)
	}
	if d.Min != 0.001 {
		t.Errorf("Min = %v, want 0.001", d.Min)
	}
	if d.Max < 999 || d.Max > 1001 {
		t.Errorf("Max = %v, want ~1000", d.Max)
	}
}

func TestPhaseTracker(t *testing.T) {
	tracker := NewPhaseTracker()
	if tracker.Current() != PhaseIdle {
		t.Errorf("initial phase = %v, want %v", tracker.Current(), PhaseIdle)
	}

	tracker.Set(PhaseWarmup)
	tracker.Set(PhaseWarmup)
	tracker.Set(PhaseRunning)

	history := tracker.History()
	if len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
	if history[0].Phase != PhaseWarmup || history[1].Phase != PhaseRunning {
		t.Errorf("History() = %+v", history)
	}
	if history[1].Timestamp.Before(history[0].Timestamp) {
		t.Error("history timestamps are not ordered")
	}
}

func TestPhaseTracker_ConcurrentReads(t *testing.T) {
	tracker := NewPhaseTracker()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = tracker.Current()
			}
		}()
	}
	for _, p := range []Phase{PhaseWarmup, PhaseRunning, PhaseStopping, PhaseAggregated} {
		tracker.Set(p)
	}
	wg.Wait()

	if tracker.Current() != PhaseAggregated {
		t.Errorf("Current() = %v, want %v", tracker.Current(), PhaseAggregated)
	}
}

func TestExporter_Observe(t *testing.T) {
	e := NewExporter()
	e.Observe(Summary{
		Model:        "mlp",
		Threads:      4,
		QPS:          123.5,
		AvgLatencyMs: 8,
		P99LatencyMs: 12,
		AvgCPUUsage:  55,
		PeakMemoryMB: 300,
		Failures:     2,
	})

	if got := testutil.ToFloat64(e.qps.WithLabelValues("mlp", "4")); got != 123.5 {
		t.Errorf("qps = %v, want 123.5", got)
	}
	if got := testutil.ToFloat64(e.failures.WithLabelValues("mlp", "4")); got != 2 {
		t.Errorf("failures = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(e.latencyP99); got != 1 {
		t.Errorf("latency_p99 series = %d, want 1", got)
	}

	expected := `
# HELP inferbench_memory_peak_mb Peak resident memory of the process in MB.
# TYPE inferbench_memory_peak_mb gauge
inferbench_memory_peak_mb{model="mlp",threads="4"} 300
`
	if err := testutil.GatherAndCompare(e.Registry(), strings.NewReader(expected), "inferbench_memory_peak_mb"); err != nil {
		t.Error(err)
	}
}

func TestExporter_WriteTextfile(t *testing.T) {
	e := NewExporter()
	e.Observe(Summary{Model: "m", Threads: 1, QPS: 10})

	path := filepath.Join(t.TempDir(), "inferbench.prom")
	if err := e.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `inferbench_qps{model="m",threads="1"} 10`) {
		t.Errorf("textfile missing qps gauge:\n%s", data)
	}
}
