package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Phase is a stage of a benchmark run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWarmup     Phase = "warmup"
	PhaseRunning    Phase = "running"
	PhaseStopping   Phase = "stopping"
	PhaseAggregated Phase = "aggregated"
)

// PhaseChange records when a phase transition occurred.
type PhaseChange struct {
	Phase     Phase     `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}

// PhaseTracker tracks the current phase and its transition history.
//
// Current is lock-free so progress observers can poll it while workers run.
type PhaseTracker struct {
	current atomic.Value // Phase

	mu      sync.Mutex
	history []PhaseChange
}

// NewPhaseTracker creates a tracker in PhaseIdle.
func NewPhaseTracker() *PhaseTracker {
	t := &PhaseTracker{}
	t.current.Store(PhaseIdle)
	return t
}

// Set moves to phase. Setting the current phase again is a no-op.
func (t *PhaseTracker) Set(phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Current() == phase {
		return
	}
	t.current.Store(phase)
	t.history = append(t.history, PhaseChange{Phase: phase, Timestamp: time.Now()})
}

// Current returns the current phase.
func (t *PhaseTracker) Current() Phase {
	return t.current.Load().(Phase)
}

// History returns a copy of all transitions in order.
func (t *PhaseTracker) History() []PhaseChange {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]PhaseChange, len(t.history))
	copy(result, t.history)
	return result
}
