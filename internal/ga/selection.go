package ga

import (
	"fmt"
	"sort"
)

// RankBy reorders values by their priorities. Equal priorities keep their
// input order in both directions.
func RankBy[T any](values []T, priorities []float64, descending bool) ([]T, error) {
	if len(values) != len(priorities) {
		return nil, fmt.Errorf("%w: %d values but %d priorities", ErrInvalidArgument, len(values), len(priorities))
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if descending {
			return priorities[idx[i]] > priorities[idx[j]]
		}
		return priorities[idx[i]] < priorities[idx[j]]
	})

	out := make([]T, len(values))
	for i, k := range idx {
		out[i] = values[k]
	}
	return out, nil
}

// RankByFitness sorts a population by fitness (descending)
func RankByFitness(pop Population, fitness []float64) (Population, error) {
	return RankBy(pop, fitness, true)
}

// Elites returns the top k individuals of a generation.
func Elites(g Generation, k int) (Population, error) {
	if k <= 0 || k > len(g.Population) {
		return nil, fmt.Errorf("%w: elite count %d for population of %d", ErrInvalidArgument, k, len(g.Population))
	}
	ranked, err := RankByFitness(g.Population, g.Fitness)
	if err != nil {
		return nil, err
	}
	return ranked[:k], nil
}
