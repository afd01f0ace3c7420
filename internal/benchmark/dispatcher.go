package benchmark

import "sync/atomic"

// Dispatcher hands out work units to workers through one shared counter.
//
// Units are claimed in strictly decreasing order, Requests down to 1.
// Every unit is claimed exactly once no matter how many goroutines race.
type Dispatcher struct {
	remaining atomic.Int64
}

// NewDispatcher creates a dispatcher holding requests units.
func NewDispatcher(requests int) *Dispatcher {
	d := &Dispatcher{}
	d.remaining.Store(int64(requests))
	return d
}

// ClaimNext claims one unit. It returns the unit index and true, or false
// once the dispatcher is exhausted.
func (d *Dispatcher) ClaimNext() (int, bool) {
	prev := d.remaining.Add(-1) + 1
	if prev > 0 {
		return int(prev), true
	}
	return 0, false
}

// Remaining returns the number of unclaimed units.
func (d *Dispatcher) Remaining() int {
	if n := d.remaining.Load(); n > 0 {
		return int(n)
	}
	return 0
}
