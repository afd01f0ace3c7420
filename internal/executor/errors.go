package executor

import (
	"errors"
	"fmt"
)

// ErrEnvClosed is returned when a model is loaded through a closed Env.
var ErrEnvClosed = errors.New("executor environment is closed")

// ErrNotLoaded is returned by Run before a model has been loaded.
var ErrNotLoaded = errors.New("no model loaded")

// LoadError reports a model that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SizeMismatchError reports an input whose length does not match the model.
type SizeMismatchError struct {
	Got  int
	Want int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("input data size mismatch: got %d elements, want %d", e.Got, e.Want)
}
