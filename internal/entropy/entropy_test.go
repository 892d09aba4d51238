package entropy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameStream(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
}

func TestForkDeterministicAndIndependent(t *testing.T) {
	a := NewSource(7).Fork(13)
	b := NewSource(7).Fork(13)
	c := NewSource(7).Fork(14)

	same := true
	for i := 0; i < 50; i++ {
		av, bv, cv := a.Float(), b.Float(), c.Float()
		assert.Equal(t, av, bv, "same (seed, salt) must replay")
		if av != cv {
			same = false
		}
	}
	assert.False(t, same, "sibling forks must diverge")
}

func TestBounds(t *testing.T) {
	s := NewSource(3)
	for i := 0; i < 1000; i++ {
		f := s.Float()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		sym := s.Symmetric(0.1)
		assert.GreaterOrEqual(t, sym, -0.1)
		assert.LessOrEqual(t, sym, 0.1)

		n := s.Intn(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
}

func TestChanceEdges(t *testing.T) {
	s := NewSource(3)
	assert.False(t, s.Chance(0))
	assert.True(t, s.Chance(1))
}

func TestConcurrentUseDoesNotRace(t *testing.T) {
	s := NewSource(3)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = s.Float()
			}
		}()
	}
	wg.Wait()
}
