package benchmark

import "math/rand/v2"

// GenerateInput returns size floats drawn uniformly from [0, 1) with a PCG
// stream seeded by seed. The same seed always yields the same input.
func GenerateInput(size int64, seed uint64) []float32 {
	if size <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	input := make([]float32, size)
	for i := range input {
		input[i] = rng.Float32()
	}
	return input
}
