// Package executor defines the compute unit driven by the benchmark harness.
//
// An Executor loads a model once and then runs single inference calls on a
// flat float32 input. The harness never looks inside a call: it only sizes
// the input with InputSize and times Run.
//
// The package ships one implementation, Dense, which evaluates a small
// fully-connected network described by a YAML file. It exists so the
// harness can be exercised end to end without a native inference runtime.
package executor

import (
	"fmt"
	"strings"
)

// Executor is a loaded model that can run inference calls.
//
// Run must be safe for concurrent use once LoadModel has returned: the
// benchmark pool calls it from many goroutines with the same input slice,
// which implementations must treat as read-only.
type Executor interface {
	// LoadModel loads the model at path. Failures are reported as *LoadError.
	LoadModel(path string, level OptLevel) error

	// Run executes one inference call. An input whose length differs from
	// InputSize fails with *SizeMismatchError.
	Run(input []float32) ([]float32, error)

	// InputSize returns the number of float32 elements Run expects.
	InputSize() int64
}

// OptLevel controls how aggressively a model is optimized at load time.
type OptLevel int

const (
	// OptNone disables all optimizations.
	OptNone OptLevel = 0

	// OptBasic enables basic optimizations (operator fusion).
	OptBasic OptLevel = 1

	// OptExtended enables extended optimizations.
	OptExtended OptLevel = 2

	// OptAll enables every available optimization. This is the default.
	OptAll OptLevel = 99
)

// String returns the CLI name of the level.
func (l OptLevel) String() string {
	switch l {
	case OptNone:
		return "none"
	case OptBasic:
		return "basic"
	case OptExtended:
		return "extended"
	case OptAll:
		return "all"
	default:
		return fmt.Sprintf("OptLevel(%d)", int(l))
	}
}

// ParseOptLevel parses a CLI optimization level name.
//
// Accepted values are "none", "basic", "extended" and "all" (case-insensitive).
// An unknown name returns OptAll together with an error so callers can warn
// and continue with the default.
func ParseOptLevel(s string) (OptLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return OptNone, nil
	case "basic":
		return OptBasic, nil
	case "extended":
		return OptExtended, nil
	case "all", "":
		return OptAll, nil
	default:
		return OptAll, fmt.Errorf("unknown optimization level %q", s)
	}
}
