package rng

import (
	"math/rand"
	"time"
)

// Source is a seeded uniform random source shared by the layout and scene generators
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New creates a source for the given seed. A zero seed picks one from the clock.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the source was created with
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a random float in range [0.0, 1.0)
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Range returns a random float in range [min, max)
func (s *Source) Range(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// Perm returns a random permutation of [0, n)
func (s *Source) Perm(n int) []int {
	return s.rng.Perm(n)
}
