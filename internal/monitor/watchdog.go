package monitor

// MemoryReader reports the current memory usage in MB.
type MemoryReader interface {
	MemoryUsage() (float64, error)
}

// Watchdog checks memory usage against a limit.
type Watchdog struct {
	reader MemoryReader
}

// NewWatchdog creates a watchdog reading from reader.
func NewWatchdog(reader MemoryReader) *Watchdog {
	return &Watchdog{reader: reader}
}

// CheckMemoryLimit reports whether current usage exceeds limitMB.
// A non-positive limit disables the check. A failed read reports false.
func (w *Watchdog) CheckMemoryLimit(limitMB float64) bool {
	if limitMB <= 0 || w.reader == nil {
		return false
	}
	usage, err := w.reader.MemoryUsage()
	if err != nil {
		return false
	}
	return usage > limitMB
}
