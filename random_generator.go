package megasena

import (
	"math/rand"
	"slices"
	"time"
)

// RandomGenerator is the sampling source used by every strategy. It is not
// safe for concurrent use; the generator creates one per request.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator creates a generator with a fixed seed
func NewRandomGenerator(seed int64) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededGenerator seeds from the wall clock so successive requests
// in one process do not produce correlated games.
func NewTimeSeededGenerator() *RandomGenerator {
	return NewRandomGenerator(time.Now().UnixNano())
}

// GenerateInRange generates a random number within [min, max] (inclusive)
func (g *RandomGenerator) GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidParameter.WithDetailsf("range min %d greater than max %d", min, max)
	}
	if min == max {
		return min, nil
	}
	return min + g.rng.Intn(max-min+1), nil
}

// GenerateFloat generates a random float in [0, 1)
func (g *RandomGenerator) GenerateFloat() float64 {
	return g.rng.Float64()
}

// Sample draws k distinct elements of pool uniformly, without replacement.
// pool itself is left untouched.
func (g *RandomGenerator) Sample(pool []int, k int) ([]int, error) {
	if k < 0 || k > len(pool) {
		return nil, ErrPoolInsufficient.WithDetailsf("sample of %d from pool of %d", k, len(pool))
	}

	work := slices.Clone(pool)
	for i := 0; i < k; i++ {
		j := i + g.rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k], nil
}

// SampleRange draws k distinct numbers uniformly from MinNumber..MaxNumber
func (g *RandomGenerator) SampleRange(k int) ([]int, error) {
	return g.Sample(allNumbers(), k)
}

// allNumbers returns 1..60 ascending
func allNumbers() []int {
	out := make([]int, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		out = append(out, n)
	}
	return out
}
