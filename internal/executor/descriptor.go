package executor

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxParameters bounds the weight count of a descriptor so a typo in a
// layer width cannot exhaust memory at load time.
const maxParameters = 1 << 28

// Descriptor is the YAML description of a dense model.
//
//	name: mlp-small
//	input: [1, 3, 32, 32]
//	seed: 7
//	layers:
//	  - {units: 128, activation: relu}
//	  - {units: 10, activation: softmax}
//	delay: 0s
type Descriptor struct {
	Name   string      `yaml:"name" json:"name"`
	Input  []int64     `yaml:"input" json:"input"`
	Seed   uint64      `yaml:"seed" json:"seed"`
	Layers []LayerSpec `yaml:"layers" json:"layers"`

	// Delay is an optional simulated device time added to every call.
	Delay string `yaml:"delay,omitempty" json:"delay,omitempty"`
}

// LayerSpec describes one fully-connected layer.
type LayerSpec struct {
	Units      int    `yaml:"units" json:"units"`
	Activation string `yaml:"activation,omitempty" json:"activation,omitempty"`
}

// LoadDescriptor reads and validates a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses and validates descriptor YAML.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse model descriptor: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// InputSize returns the product of the input dimensions. Dimensions below
// 1 are dynamic and count as 1. An element count that overflows int64
// returns 0; Validate rejects such descriptors.
func (d *Descriptor) InputSize() int64 {
	size, ok := d.inputSize()
	if !ok {
		return 0
	}
	return size
}

func (d *Descriptor) inputSize() (int64, bool) {
	size := int64(1)
	for _, dim := range d.Input {
		if dim < 1 {
			dim = 1
		}
		if size > math.MaxInt64/dim {
			return 0, false
		}
		size *= dim
	}
	return size, true
}

// DelayDuration returns the parsed per-call delay, or zero if unset.
func (d *Descriptor) DelayDuration() (time.Duration, error) {
	if strings.TrimSpace(d.Delay) == "" {
		return 0, nil
	}
	return time.ParseDuration(d.Delay)
}

// Validate checks the descriptor for structural errors.
func (d *Descriptor) Validate() error {
	var errs []error

	if len(d.Input) == 0 {
		errs = append(errs, errors.New("input: at least one dimension is required"))
	}
	if len(d.Layers) == 0 {
		errs = append(errs, errors.New("layers: at least one layer is required"))
	}

	in, ok := d.inputSize()
	if !ok || in > maxParameters {
		errs = append(errs, fmt.Errorf("input: %v holds more elements than the parameter limit %d", d.Input, maxParameters))
		return errors.Join(errs...)
	}

	params := int64(0)
	for i, layer := range d.Layers {
		if layer.Units < 1 {
			errs = append(errs, fmt.Errorf("layers[%d].units: must be positive, got %d", i, layer.Units))
			continue
		}
		if _, err := parseActivation(layer.Activation); err != nil {
			errs = append(errs, fmt.Errorf("layers[%d].activation: %w", i, err))
		}
		if int64(layer.Units) > maxParameters || params > maxParameters {
			params = maxParameters + 1
			continue
		}
		params += in*int64(layer.Units) + int64(layer.Units)
		in = int64(layer.Units)
	}
	if params > maxParameters {
		errs = append(errs, fmt.Errorf("model has %d parameters, limit is %d", params, maxParameters))
	}

	if delay, err := d.DelayDuration(); err != nil {
		errs = append(errs, fmt.Errorf("delay: %w", err))
	} else if delay < 0 {
		errs = append(errs, fmt.Errorf("delay: must not be negative, got %s", delay))
	}

	return errors.Join(errs...)
}
