package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	src *rand.PCG
	r   *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return NewStreamRNG(uint64(seed), 0)
}

// NewStreamRNG creates an RNG for one of several independent streams sharing
// a seed. Workers use distinct streams so they never contend on a generator.
func NewStreamRNG(seed, stream uint64) *RNG {
	src := rand.NewPCG(seed, stream)
	return &RNG{src: src, r: rand.New(src)}
}

// Reseed restarts the generator without allocating.
func (r *RNG) Reseed(seed, stream uint64) {
	r.src.Seed(seed, stream)
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.Uint64()&1 == 1
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
