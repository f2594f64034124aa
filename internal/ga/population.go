package ga

import (
	"errors"
	"fmt"
	"math/rand"

	"dinoevo/internal/policy"
)

// ErrInvalidArgument is returned when operator inputs are inconsistent,
// such as mismatched population and fitness lengths.
var ErrInvalidArgument = errors.New("invalid argument")

// Population is the ordered set of individuals of one generation.
type Population []*policy.Individual

// RandomPopulation creates n individuals with weights drawn uniformly from
// [lo, hi).
func RandomPopulation(n, actions, stateDim int, lo, hi float64, rng *rand.Rand) (Population, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: population size %d", ErrInvalidArgument, n)
	}
	if actions <= 0 || stateDim <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", policy.ErrDimensionMismatch, actions, stateDim)
	}
	pop := make(Population, n)
	for i := range pop {
		pop[i] = policy.RandomIndividual(actions, stateDim, lo, hi, rng)
	}
	return pop, nil
}

// Size returns the population size
func (p Population) Size() int {
	return len(p)
}

// Generation pairs a population with the fitness measured for it.
// Fitness[i] belongs to Population[i].
type Generation struct {
	Index      int
	Population Population
	Fitness    []float64
}

// NewGeneration validates that every individual has a fitness value.
func NewGeneration(index int, pop Population, fitness []float64) (Generation, error) {
	if len(pop) == 0 {
		return Generation{}, fmt.Errorf("%w: empty population", ErrInvalidArgument)
	}
	if len(pop) != len(fitness) {
		return Generation{}, fmt.Errorf("%w: %d individuals but %d fitness values", ErrInvalidArgument, len(pop), len(fitness))
	}
	return Generation{Index: index, Population: pop, Fitness: fitness}, nil
}

// Best returns the individual with highest fitness; the first one wins ties.
func (g Generation) Best() (*policy.Individual, float64) {
	if len(g.Population) == 0 {
		return nil, 0
	}
	best := 0
	for i := 1; i < len(g.Fitness); i++ {
		if g.Fitness[i] > g.Fitness[best] {
			best = i
		}
	}
	return g.Population[best], g.Fitness[best]
}
