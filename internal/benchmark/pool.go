package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wesleyorama2/inferbench/internal/executor"
)

// Pool runs a fixed number of workers that drain a Dispatcher.
//
// Each worker owns its latency buffer and failure counter, so the hot loop
// writes no shared memory besides the dispatcher counter. Buffers and
// Failures may only be read after Run returns.
type Pool struct {
	threads int
	logger  *slog.Logger

	buffers  [][]float64
	failures []int

	wg sync.WaitGroup
}

// NewPool creates a pool of threads workers.
func NewPool(threads int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		threads:  threads,
		logger:   logger,
		buffers:  make([][]float64, threads),
		failures: make([]int, threads),
	}
}

// Run starts all workers and blocks until every one of them has returned.
//
// A worker returns when the dispatcher is exhausted or ctx is cancelled.
// ctx is checked before each claim; a call already in flight is not
// interrupted. input is shared by all workers and must not be modified.
func (p *Pool) Run(ctx context.Context, d *Dispatcher, exec executor.Executor, input []float32) {
	capacity := d.Remaining()/max(p.threads, 1) + 1

	for w := 0; w < p.threads; w++ {
		p.buffers[w] = make([]float64, 0, capacity)
		p.wg.Add(1)
		go p.runWorker(ctx, w, d, exec, input)
	}

	p.wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int, d *Dispatcher, exec executor.Executor, input []float32) {
	defer p.wg.Done()

	buf := p.buffers[id]
	defer func() { p.buffers[id] = buf }()

	for {
		if ctx.Err() != nil {
			return
		}

		unit, ok := d.ClaimNext()
		if !ok {
			return
		}

		start := time.Now()
		err := runOnce(exec, input)
		elapsed := time.Since(start)

		if err != nil {
			p.failures[id]++
			p.logger.Debug("inference call failed", "worker", id, "unit", unit, "error", err)
			continue
		}
		buf = append(buf, float64(elapsed.Nanoseconds())/1e6)
	}
}

// runOnce calls exec once, turning a panic into an error.
func runOnce(exec executor.Executor, input []float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panicked: %v", r)
		}
	}()
	_, err = exec.Run(input)
	return err
}

// Buffers returns the per-worker latency buffers in milliseconds.
func (p *Pool) Buffers() [][]float64 {
	return p.buffers
}

// Failures returns the total number of failed calls.
func (p *Pool) Failures() int {
	total := 0
	for _, f := range p.failures {
		total += f
	}
	return total
}

// Completed returns the number of claimed units that finished, successfully
// or not.
func (p *Pool) Completed() int {
	total := p.Failures()
	for _, b := range p.buffers {
		total += len(b)
	}
	return total
}
