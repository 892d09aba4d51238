// Package entropy provides seeded noise sources so that a whole run is
// reproducible from one seed. Per-agent streams are forked from the run
// source, which keeps results stable even when stages fan out across
// goroutines.
package entropy

import (
	"math/rand"
	"sync"
)

// Source is a deterministic random stream. Safe for concurrent use.
type Source struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// NewSource creates a stream from a seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Fork derives an independent child stream. The same (seed, salt) pair always
// yields the same stream, so forking per agent ID gives each agent a stable
// private noise sequence.
func (s *Source) Fork(salt int64) *Source {
	// splitmix-style scramble keeps sibling streams uncorrelated.
	z := uint64(s.seed) + uint64(salt)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return NewSource(int64(z ^ (z >> 31)))
}

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Symmetric returns a uniform float64 in [-scale, +scale].
func (s *Source) Symmetric(scale float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64()*2 - 1) * scale
}

// Intn returns a uniform int in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float() < p
}
