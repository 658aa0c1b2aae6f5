// Package rng provides the simulation's single deterministic random stream.
//
// Every subsystem that needs randomness draws from one shared Rng. The stream
// is a splitmix64 counter generator: state advances by a fixed odd increment
// per word, so the whole history is addressable by (seed, word position). Saves
// store the word position and restore it exactly, which is what lets a loaded
// game continue bit-identically.
package rng

import "math"

const gamma = 0x9E3779B97F4A7C15

// Rng is a seeded splitmix64 stream with an explicit word position.
// It is not safe for concurrent use; the world loop owns it.
type Rng struct {
	seed uint64
	pos  uint64
}

func New(seed int64) *Rng {
	return &Rng{seed: uint64(seed)}
}

// Resume reconstructs a stream at a saved word position.
func Resume(seed int64, wordPos uint64) *Rng {
	return &Rng{seed: uint64(seed), pos: wordPos}
}

func (r *Rng) Seed() int64     { return int64(r.seed) }
func (r *Rng) WordPos() uint64 { return r.pos }

// Uint64 returns the next word and advances the position.
func (r *Rng) Uint64() uint64 {
	z := r.seed + gamma*(r.pos+1)
	r.pos++
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Float64 returns a uniform value in [0, 1).
func (r *Rng) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// IntN returns a uniform value in [0, n). n must be > 0.
func (r *Rng) IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN with non-positive n")
	}
	return int(r.Uint64() % uint64(n))
}

// Range returns a uniform value in [lo, hi).
func (r *Rng) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Chance returns true with probability p.
func (r *Rng) Chance(p float64) bool {
	if p <= 0 {
		// Still burn a word so the draw count is independent of p.
		r.Uint64()
		return false
	}
	return r.Float64() < p
}

// Norm returns an approximately normal value with the given mean and standard
// deviation, via the sum of three uniforms (cheap, bounded, deterministic).
func (r *Rng) Norm(mean, stddev float64) float64 {
	s := r.Float64() + r.Float64() + r.Float64()
	// Sum of 3 uniforms has mean 1.5 and stddev 0.5.
	v := mean + stddev*(s-1.5)*2
	if math.IsNaN(v) {
		return mean
	}
	return v
}
