package executor

import (
	"fmt"
	"math"
	"strings"
)

type activation int

const (
	actLinear activation = iota
	actReLU
	actSigmoid
	actTanh
	actSoftmax
)

func (a activation) String() string {
	switch a {
	case actReLU:
		return "relu"
	case actSigmoid:
		return "sigmoid"
	case actTanh:
		return "tanh"
	case actSoftmax:
		return "softmax"
	default:
		return "linear"
	}
}

func parseActivation(s string) (activation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear", "identity":
		return actLinear, nil
	case "relu":
		return actReLU, nil
	case "sigmoid":
		return actSigmoid, nil
	case "tanh":
		return actTanh, nil
	case "softmax":
		return actSoftmax, nil
	default:
		return actLinear, fmt.Errorf("unknown activation %q", s)
	}
}

// elementwise applies a per-element activation. Softmax is vector-wide and
// handled by softmax.
func (a activation) elementwise(v float32) float32 {
	switch a {
	case actReLU:
		if v < 0 {
			return 0
		}
		return v
	case actSigmoid:
		return float32(1 / (1 + math.Exp(-float64(v))))
	case actTanh:
		return float32(math.Tanh(float64(v)))
	default:
		return v
	}
}

func softmax(v []float32) {
	if len(v) == 0 {
		return
	}
	maxV := v[0]
	for _, x := range v[1:] {
		if x > maxV {
			maxV = x
		}
	}
	var sum float64
	for i, x := range v {
		e := math.Exp(float64(x - maxV))
		v[i] = float32(e)
		sum += e
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / sum)
	}
}

func dot(w, x []float32) float32 {
	var s float32
	for i := range x {
		s += w[i] * x[i]
	}
	return s
}

// dot4 is dot with four independent accumulators.
func dot4(w, x []float32) float32 {
	n := len(x)
	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += w[i] * x[i]
		s1 += w[i+1] * x[i+1]
		s2 += w[i+2] * x[i+2]
		s3 += w[i+3] * x[i+3]
	}
	for ; i < n; i++ {
		s0 += w[i] * x[i]
	}
	return (s0 + s1) + (s2 + s3)
}
