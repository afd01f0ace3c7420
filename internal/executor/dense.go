package executor

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// minRowsPerWorker is the smallest slice of a layer's output rows worth
// handing to a separate goroutine.
const minRowsPerWorker = 32

// Dense evaluates a fully-connected network loaded from a Descriptor.
//
// Weights are generated deterministically from the descriptor seed, so two
// loads of the same file produce identical outputs. Run is safe for
// concurrent use.
type Dense struct {
	env   *Env
	model atomic.Pointer[denseModel]
}

type denseModel struct {
	desc      *Descriptor
	level     OptLevel
	inputSize int64
	layers    []*denseLayer
	delay     time.Duration
	params    int64
}

type denseLayer struct {
	in, out int
	weights []float32 // out rows of in columns
	bias    []float32
	act     activation
}

// ModelInfo summarizes a loaded model.
type ModelInfo struct {
	Name       string      `json:"name"`
	InputDims  []int64     `json:"input_dims"`
	InputSize  int64       `json:"input_size"`
	Layers     []LayerInfo `json:"layers"`
	OutputSize int         `json:"output_size"`
	Parameters int64       `json:"parameters"`
	OptLevel   string      `json:"optimization"`
}

// LayerInfo describes one loaded layer.
type LayerInfo struct {
	In         int    `json:"in"`
	Out        int    `json:"out"`
	Activation string `json:"activation"`
}

// NewDense creates an executor bound to env. A nil env uses defaults.
func NewDense(env *Env) *Dense {
	if env == nil {
		env = NewEnv()
	}
	return &Dense{env: env}
}

var _ Executor = (*Dense)(nil)

// LoadModel loads the descriptor at path and materializes its weights.
func (d *Dense) LoadModel(path string, level OptLevel) error {
	if d.env.Closed() {
		return &LoadError{Path: path, Err: ErrEnvClosed}
	}

	desc, err := LoadDescriptor(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}

	model := buildModel(desc, level)
	d.model.Store(model)

	d.env.Logger().Info("model loaded",
		"path", path,
		"name", desc.Name,
		"input_size", model.inputSize,
		"layers", len(model.layers),
		"parameters", model.params,
		"optimization", level.String(),
	)
	return nil
}

// InputSize returns the expected input element count, or 0 before a model
// is loaded.
func (d *Dense) InputSize() int64 {
	m := d.model.Load()
	if m == nil {
		return 0
	}
	return m.inputSize
}

// Describe returns a summary of the loaded model.
func (d *Dense) Describe() (ModelInfo, error) {
	m := d.model.Load()
	if m == nil {
		return ModelInfo{}, ErrNotLoaded
	}

	info := ModelInfo{
		Name:       m.desc.Name,
		InputDims:  append([]int64(nil), m.desc.Input...),
		InputSize:  m.inputSize,
		Parameters: m.params,
		OptLevel:   m.level.String(),
	}
	for _, l := range m.layers {
		info.Layers = append(info.Layers, LayerInfo{In: l.in, Out: l.out, Activation: l.act.String()})
	}
	if n := len(m.layers); n > 0 {
		info.OutputSize = m.layers[n-1].out
	}
	return info, nil
}

// Run executes one forward pass. input is not modified.
func (d *Dense) Run(input []float32) ([]float32, error) {
	m := d.model.Load()
	if m == nil {
		return nil, ErrNotLoaded
	}
	if int64(len(input)) != m.inputSize {
		return nil, &SizeMismatchError{Got: len(input), Want: m.inputSize}
	}

	threads := d.env.IntraOpThreads()
	x := input
	for _, layer := range m.layers {
		y := make([]float32, layer.out)
		layer.forward(x, y, m.level, threads)
		x = y
	}

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return x, nil
}

func buildModel(desc *Descriptor, level OptLevel) *denseModel {
	rng := rand.New(rand.NewPCG(desc.Seed, desc.Seed^0x9e3779b97f4a7c15))
	delay, _ := desc.DelayDuration()

	m := &denseModel{
		desc:      desc,
		level:     level,
		inputSize: desc.InputSize(),
		delay:     delay,
	}

	in := int(m.inputSize)
	for _, ls := range desc.Layers {
		act, _ := parseActivation(ls.Activation)
		layer := &denseLayer{
			in:      in,
			out:     ls.Units,
			weights: make([]float32, in*ls.Units),
			bias:    make([]float32, ls.Units),
			act:     act,
		}

		// Xavier uniform
		limit := float32(math.Sqrt(6 / float64(in+ls.Units)))
		for i := range layer.weights {
			layer.weights[i] = (rng.Float32()*2 - 1) * limit
		}

		m.layers = append(m.layers, layer)
		m.params += int64(len(layer.weights) + len(layer.bias))
		in = ls.Units
	}
	return m
}

func (l *denseLayer) forward(x, y []float32, level OptLevel, threads int) {
	workers := threads
	if maxWorkers := l.out / minRowsPerWorker; workers > maxWorkers {
		workers = maxWorkers
	}

	if workers <= 1 {
		l.rows(x, y, 0, l.out, level)
	} else {
		var wg sync.WaitGroup
		chunk := (l.out + workers - 1) / workers
		for start := 0; start < l.out; start += chunk {
			end := min(start+chunk, l.out)
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				l.rows(x, y, start, end, level)
			}(start, end)
		}
		wg.Wait()
	}

	if l.act == actSoftmax {
		softmax(y)
	}
}

// rows computes output rows [start, end).
func (l *denseLayer) rows(x, y []float32, start, end int, level OptLevel) {
	switch level {
	case OptNone:
		for r := start; r < end; r++ {
			y[r] = dot(l.row(r), x)
		}
		for r := start; r < end; r++ {
			y[r] += l.bias[r]
		}
		for r := start; r < end; r++ {
			y[r] = l.act.elementwise(y[r])
		}
	case OptBasic, OptExtended:
		for r := start; r < end; r++ {
			y[r] = l.act.elementwise(dot(l.row(r), x) + l.bias[r])
		}
	default:
		for r := start; r < end; r++ {
			y[r] = l.act.elementwise(dot4(l.row(r), x) + l.bias[r])
		}
	}
}

func (l *denseLayer) row(r int) []float32 {
	return l.weights[r*l.in : (r+1)*l.in]
}
