// Package monitor samples process and host resource usage while a
// benchmark runs.
//
// A Sampler polls a Source on a fixed cadence from its own goroutine and
// records CPU utilization and resident memory. A Watchdog compares the
// current memory usage against a limit.
package monitor

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
)

// Resource names used in ResourceReadError.
const (
	ResourceCPU    = "cpu"
	ResourceMemory = "memory"
)

// ResourceReadError reports a failed read of an OS counter.
type ResourceReadError struct {
	Resource string
	Err      error
}

func (e *ResourceReadError) Error() string {
	return fmt.Sprintf("failed to read %s usage: %v", e.Resource, e.Err)
}

func (e *ResourceReadError) Unwrap() error {
	return e.Err
}

// CPUTimes is a snapshot of cumulative host CPU time.
type CPUTimes struct {
	// Idle is idle plus iowait time.
	Idle float64

	// Total is the sum of user, nice, system, idle, iowait, irq, softirq
	// and steal time.
	Total float64
}

// Source provides raw resource counters.
type Source interface {
	// CPUTimes returns cumulative host CPU time.
	CPUTimes() (CPUTimes, error)

	// ResidentMemoryBytes returns the resident set size of this process.
	ResidentMemoryBytes() (uint64, error)
}

// Unavailable returns a Source whose reads all fail with err. It stands in
// for ProcSource on hosts without procfs so a run still completes, with
// every resource sample dropped.
func Unavailable(err error) Source {
	return unavailable{err: err}
}

type unavailable struct{ err error }

func (u unavailable) CPUTimes() (CPUTimes, error)          { return CPUTimes{}, u.err }
func (u unavailable) ResidentMemoryBytes() (uint64, error) { return 0, u.err }

// ProcSource reads counters from a procfs mount.
type ProcSource struct {
	fs   procfs.FS
	self procfs.Proc
}

// NewProcSource opens the default /proc mount.
func NewProcSource() (*ProcSource, error) {
	return NewProcSourceAt(procfs.DefaultMountPoint)
}

// NewProcSourceAt opens a procfs mount at mountPoint.
func NewProcSourceAt(mountPoint string) (*ProcSource, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", mountPoint, err)
	}
	self, err := fs.Self()
	if err != nil {
		return nil, fmt.Errorf("failed to open process stats: %w", err)
	}
	return &ProcSource{fs: fs, self: self}, nil
}

var _ Source = (*ProcSource)(nil)

// CPUTimes reads the aggregate cpu line of /proc/stat.
func (p *ProcSource) CPUTimes() (CPUTimes, error) {
	stat, err := p.fs.Stat()
	if err != nil {
		return CPUTimes{}, err
	}
	c := stat.CPUTotal
	idle := c.Idle + c.Iowait
	return CPUTimes{
		Idle:  idle,
		Total: c.User + c.Nice + c.System + idle + c.IRQ + c.SoftIRQ + c.Steal,
	}, nil
}

// ResidentMemoryBytes reads the RSS field of /proc/self/stat.
func (p *ProcSource) ResidentMemoryBytes() (uint64, error) {
	stat, err := p.self.Stat()
	if err != nil {
		return 0, err
	}
	rss := stat.ResidentMemory()
	if rss < 0 {
		return 0, errors.New("negative resident memory")
	}
	return uint64(rss), nil
}
