package executor

import (
	"log/slog"
	"sync/atomic"
)

// Env is the process-wide runtime context shared by executors.
//
// The top-level caller creates one Env, passes it to every executor and to
// the benchmark orchestrator, and closes it when the process is done.
// An Env is safe for concurrent use.
type Env struct {
	logger         *slog.Logger
	intraOpThreads int
	closed         atomic.Bool
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger sets the logger. Nil values are ignored.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIntraOpThreads sets how many goroutines a single Run may use to
// evaluate one layer. Values below 1 are ignored. Default: 1.
func WithIntraOpThreads(n int) EnvOption {
	return func(e *Env) {
		if n >= 1 {
			e.intraOpThreads = n
		}
	}
}

// NewEnv creates a runtime context.
func NewEnv(opts ...EnvOption) *Env {
	env := &Env{
		logger:         slog.Default(),
		intraOpThreads: 1,
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// Logger returns the environment logger. Never nil.
func (e *Env) Logger() *slog.Logger {
	if e == nil || e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// IntraOpThreads returns the per-call parallelism.
func (e *Env) IntraOpThreads() int {
	if e == nil || e.intraOpThreads < 1 {
		return 1
	}
	return e.intraOpThreads
}

// Close releases the environment. Loading a model afterwards fails with
// ErrEnvClosed; models that are already loaded keep working.
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	e.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (e *Env) Closed() bool {
	return e != nil && e.closed.Load()
}
