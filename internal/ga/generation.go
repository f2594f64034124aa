package ga

import (
	"fmt"
	"math/rand"

	"dinoevo/internal/config"
)

// NextGeneration breeds the population that follows g. The top
// cfg.Elites individuals are carried over untouched; the rest of the
// cfg.Population slots are children of two parents drawn uniformly, with
// replacement, from the elites only. Each child is produced by Crossover
// and then mutated in place.
func NextGeneration(g Generation, cfg config.GAConfig, rng *rand.Rand) (Population, error) {
	if cfg.Population <= 0 {
		return nil, fmt.Errorf("%w: population size %d", ErrInvalidArgument, cfg.Population)
	}
	if cfg.Elites <= 0 || cfg.Elites >= cfg.Population {
		return nil, fmt.Errorf("%w: elite count %d must be in (0, %d)", ErrInvalidArgument, cfg.Elites, cfg.Population)
	}
	if len(g.Population) != len(g.Fitness) {
		return nil, fmt.Errorf("%w: %d individuals but %d fitness values", ErrInvalidArgument, len(g.Population), len(g.Fitness))
	}

	elites, err := Elites(g, cfg.Elites)
	if err != nil {
		return nil, err
	}

	next := make(Population, 0, cfg.Population)
	for _, e := range elites {
		next = append(next, e.Clone())
	}

	for len(next) < cfg.Population {
		a := elites[rng.Intn(len(elites))]
		b := elites[rng.Intn(len(elites))]
		child, err := Crossover(a, b, cfg.CrossoverChance, rng)
		if err != nil {
			return nil, err
		}
		Mutate(child, cfg.MutationChance, cfg.MutationFactorMin, cfg.MutationFactorMax, rng)
		next = append(next, child)
	}

	return next, nil
}
