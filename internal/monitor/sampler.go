package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the sampling cadence used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// ErrSamplerStarted is returned by Start on a sampler that already ran.
var ErrSamplerStarted = errors.New("sampler already started")

// ResourceSample is one reading taken by the sampler.
type ResourceSample struct {
	At         time.Time `json:"at"`
	CPUPercent float64   `json:"cpu_percent"`
	MemoryMB   float64   `json:"memory_mb"`
}

// Sampler periodically records CPU and memory usage.
//
// The CPU snapshot used to compute deltas is owned by the sampling
// goroutine while the sampler runs; CPUUsage must not be called
// concurrently with it. MemoryUsage is safe to call at any time.
type Sampler struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger
	onSample func(ResourceSample)

	// CPU snapshot
	prev   CPUTimes
	primed bool

	samples []ResourceSample

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithInterval sets the sampling cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SamplerOption {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnSample registers a hook called from the sampling goroutine after
// every recorded sample.
func WithOnSample(fn func(ResourceSample)) SamplerOption {
	return func(s *Sampler) {
		s.onSample = fn
	}
}

// NewSampler creates a sampler reading from source.
func NewSampler(source Source, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		source:   source,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the sampling cadence.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// CPUUsage returns host CPU utilization in percent since the previous call.
//
// The first call has no previous snapshot and returns 0. A non-positive
// total delta also returns 0, and negative results are clamped to 0.
func (s *Sampler) CPUUsage() (float64, error) {
	cur, err := s.source.CPUTimes()
	if err != nil {
		return 0, &ResourceReadError{Resource: ResourceCPU, Err: err}
	}

	prev, primed := s.prev, s.primed
	s.prev, s.primed = cur, true
	if !primed {
		return 0, nil
	}

	totalDelta := cur.Total - prev.Total
	if totalDelta <= 0 {
		return 0, nil
	}
	idleDelta := cur.Idle - prev.Idle

	usage := 100 * (1 - idleDelta/totalDelta)
	if usage < 0 {
		return 0, nil
	}
	if usage > 100 {
		return 100, nil
	}
	return usage, nil
}

// MemoryUsage returns the resident set size of this process in MB.
func (s *Sampler) MemoryUsage() (float64, error) {
	rss, err := s.source.ResidentMemoryBytes()
	if err != nil {
		return 0, &ResourceReadError{Resource: ResourceMemory, Err: err}
	}
	return float64(rss) / (1024 * 1024), nil
}

// Start primes the CPU snapshot and launches the sampling goroutine.
// Sampling ends when ctx is cancelled or Stop is called.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrSamplerStarted
	}
	s.started = true

	if _, err := s.CPUUsage(); err != nil {
		s.logger.Debug("initial cpu read failed", "error", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop ends sampling, waits for the sampling goroutine and returns the
// collected samples. Calling Stop again returns the same samples.
func (s *Sampler) Stop() []ResourceSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started && !s.stopped {
		s.cancel()
		s.wg.Wait()
		s.stopped = true
	}
	return s.samples
}

func (s *Sampler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sample, err := s.sample(now)
			if err != nil {
				s.logger.Debug("dropping resource sample", "error", err)
				continue
			}
			s.samples = append(s.samples, sample)
			if s.onSample != nil {
				s.onSample(sample)
			}
		}
	}
}

func (s *Sampler) sample(now time.Time) (ResourceSample, error) {
	cpu, err := s.CPUUsage()
	if err != nil {
		return ResourceSample{}, err
	}
	mem, err := s.MemoryUsage()
	if err != nil {
		return ResourceSample{}, err
	}
	return ResourceSample{At: now, CPUPercent: cpu, MemoryMB: mem}, nil
}

// CPUValues returns the CPU readings of samples in order.
func CPUValues(samples []ResourceSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.CPUPercent
	}
	return out
}

// MemoryValues returns the memory readings of samples in order.
func MemoryValues(samples []ResourceSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.MemoryMB
	}
	return out
}
