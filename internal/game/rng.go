package game

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand supplies the random draws the engine needs. Implementations must
// be safe for concurrent use or handed out per call; the engine holds no
// other shared state.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// lockedRand wraps math/rand with a mutex so a single source can serve
// concurrent plays.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand returns a time-seeded Rand safe for concurrent use.
func NewLockedRand() Rand {
	return NewSeededRand(uint64(time.Now().UnixNano()), rand.Uint64())
}

// NewSeededRand returns a Rand with a fixed seed for reproducible draws.
func NewSeededRand(seed1, seed2 uint64) Rand {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

// weightedPick selects an index from weights proportionally to their
// values. Weights need not be normalized; their sum must be positive.
func weightedPick(rng Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}

	r := rng.IntN(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
