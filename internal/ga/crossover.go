package ga

import (
	"fmt"
	"math/rand"

	"dinoevo/internal/policy"
)

// Crossover returns a new child that starts as a copy of a. Every weight,
// across all rows, is replaced by b's weight with probability chance. The
// child shares no storage with either parent.
func Crossover(a, b *policy.Individual, chance float64, rng *rand.Rand) (*policy.Individual, error) {
	if !a.SameShape(b) {
		ra, ca := a.Dims()
		rb, cb := b.Dims()
		return nil, fmt.Errorf("%w: crossover of %dx%d with %dx%d", policy.ErrDimensionMismatch, ra, ca, rb, cb)
	}

	child := a.Clone()
	rows, cols := child.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() <= chance {
				child.Set(i, j, b.At(i, j))
			}
		}
	}
	return child, nil
}
