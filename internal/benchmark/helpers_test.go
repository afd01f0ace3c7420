package benchmark

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/inferbench/internal/executor"
	"github.com/wesleyorama2/inferbench/internal/monitor"
)

// fakeExecutor sleeps for delay on every call and optionally fails.
type fakeExecutor struct {
	size  int64
	delay time.Duration

	// failEvery makes every n-th call fail when > 0
	failEvery int64
	panics    bool

	calls atomic.Int64

	mu     sync.Mutex
	inputs map[*float32]struct{}
}

func (f *fakeExecutor) LoadModel(string, executor.OptLevel) error { return nil }

func (f *fakeExecutor) InputSize() int64 { return f.size }

func (f *fakeExecutor) Run(input []float32) ([]float32, error) {
	n := f.calls.Add(1)

	if len(input) > 0 {
		f.mu.Lock()
		if f.inputs == nil {
			f.inputs = make(map[*float32]struct{})
		}
		f.inputs[&input[0]] = struct{}{}
		f.mu.Unlock()
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("kernel exploded")
	}
	if f.failEvery > 0 && n%f.failEvery == 0 {
		return nil, errors.New("inference failed")
	}
	return []float32{1}, nil
}

// distinctInputs returns how many different input slices Run has seen.
func (f *fakeExecutor) distinctInputs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// fakeSource reports a fixed CPU busy fraction and memory size.
type fakeSource struct {
	busy     float64
	memoryMB float64

	mu    sync.Mutex
	ticks float64
}

func (s *fakeSource) CPUTimes() (monitor.CPUTimes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	return monitor.CPUTimes{Idle: s.ticks * 100 * (1 - s.busy), Total: s.ticks * 100}, nil
}

func (s *fakeSource) ResidentMemoryBytes() (uint64, error) {
	return uint64(s.memoryMB * 1024 * 1024), nil
}
