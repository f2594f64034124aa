package ga

import (
	"math/rand"

	"dinoevo/internal/policy"
)

// Mutate perturbs ind in place. Every weight, visited row by row, is
// scaled by a factor drawn from [factorMin, factorMax] with probability
// chance. Each weight consumes one draw, plus one more when it mutates.
func Mutate(ind *policy.Individual, chance, factorMin, factorMax float64, rng *rand.Rand) {
	rows, cols := ind.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() <= chance {
				factor := factorMin + rng.Float64()*(factorMax-factorMin)
				ind.Set(i, j, ind.At(i, j)*factor)
			}
		}
	}
}
