package chem

import (
	"math/rand"
	"time"
)

// Rand is the source of randomness injected into a network. *math/rand.Rand
// satisfies it directly; tests substitute deterministic stubs.
type Rand interface {
	Float64() float64
	Intn(n int) int
	NormFloat64() float64
	Perm(n int) []int
}

// NewRand returns a seeded random source. A seed of 0 means
// "seed from the current time".
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from U(lo, hi).
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
