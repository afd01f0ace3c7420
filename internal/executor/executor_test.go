package executor

import (
	"testing"
	"time"
)

func TestParseOptLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    OptLevel
		wantErr bool
	}{
		{"none", OptNone, false},
		{"basic", OptBasic, false},
		{"EXTENDED", OptExtended, false},
		{"all", OptAll, false},
		{"", OptAll, false},
		{"turbo", OptAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOptLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOptLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOptLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptLevel_String(t *testing.T) {
	if got := OptExtended.String(); got != "extended" {
		t.Errorf("OptExtended.String() = %q, want %q", got, "extended")
	}
	if got := OptLevel(5).String(); got != "OptLevel(5)" {
		t.Errorf("OptLevel(5).String() = %q", got)
	}
}

func TestDescriptor_InputSize(t *testing.T) {
	tests := []struct {
		dims []int64
		want int64
	}{
		{[]int64{1, 3, 224, 224}, 150528},
		{[]int64{-1, 3, 224, 224}, 150528},
		{[]int64{0, 10}, 10},
		{[]int64{7}, 7},
	}

	for _, tt := range tests {
		d := &Descriptor{Input: tt.dims}
		if got := d.InputSize(); got != tt.want {
			t.Errorf("InputSize(%v) = %d, want %d", tt.dims, got, tt.want)
		}
	}
}

func TestDescriptor_Delay(t *testing.T) {
	desc, err := ParseDescriptor([]byte("input: [2]\ndelay: 5ms\nlayers:\n  - {units: 1}\n"))
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	delay, err := desc.DelayDuration()
	if err != nil || delay != 5*time.Millisecond {
		t.Errorf("DelayDuration() = %v, %v, want 5ms", delay, err)
	}
}

func TestDescriptor_Validate_TooLarge(t *testing.T) {
	desc := &Descriptor{
		Input:  []int64{1 << 16},
		Layers: []LayerSpec{{Units: 1 << 14}},
	}
	if err := desc.Validate(); err == nil {
		t.Error("Validate() expected error for oversized model")
	}
}

func TestDescriptor_Validate_Overflow(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
	}{
		{
			name: "input element count wraps",
			desc: Descriptor{Input: []int64{1 << 32, 1 << 32}, Layers: []LayerSpec{{Units: 1}}},
		},
		{
			name: "input above parameter limit",
			desc: Descriptor{Input: []int64{1 << 20, 1 << 10}, Layers: []LayerSpec{{Units: 1}}},
		},
		{
			name: "huge layer width",
			desc: Descriptor{Input: []int64{1 << 20}, Layers: []LayerSpec{{Units: 1 << 30}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.desc.Validate(); err == nil {
				t.Errorf("Validate() expected error for input %v", tt.desc.Input)
			}
		})
	}

	wraps := Descriptor{Input: []int64{1 << 32, 1 << 32}}
	if got := wraps.InputSize(); got != 0 {
		t.Errorf("InputSize() = %d, want 0 on overflow", got)
	}
}

func TestEnv(t *testing.T) {
	env := NewEnv(WithIntraOpThreads(0), WithLogger(nil))
	if env.IntraOpThreads() != 1 {
		t.Errorf("IntraOpThreads() = %d, want 1", env.IntraOpThreads())
	}
	if env.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if env.Closed() {
		t.Error("new Env reports closed")
	}
	_ = env.Close()
	if !env.Closed() {
		t.Error("Close() did not mark Env closed")
	}
}

func TestActivations(t *testing.T) {
	if got := actReLU.elementwise(-2); got != 0 {
		t.Errorf("relu(-2) = %v, want 0", got)
	}
	if got := actSigmoid.elementwise(0); got != 0.5 {
		t.Errorf("sigmoid(0) = %v, want 0.5", got)
	}
	if got := actLinear.elementwise(-3); got != -3 {
		t.Errorf("linear(-3) = %v, want -3", got)
	}

	v := []float32{1, 1, 1, 1}
	softmax(v)
	for i, x := range v {
		if x != 0.25 {
			t.Errorf("softmax[%d] = %v, want 0.25", i, x)
		}
	}
}

func TestDot4MatchesDot(t *testing.T) {
	w := []float32{1, 2, 3, 4, 5, 6, 7}
	x := []float32{7, 6, 5, 4, 3, 2, 1}
	if dot(w, x) != dot4(w, x) {
		t.Errorf("dot4 = %v, dot = %v", dot4(w, x), dot(w, x))
	}
}
