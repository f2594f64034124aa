package eval

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"dinoevo/internal/ga"
	"dinoevo/internal/policy"
)

// ErrMalformedState is returned when an environment reports NaN or Inf
// in its observation.
var ErrMalformedState = errors.New("malformed environment state")

// Environment is the episode protocol the evaluator drives. Implementations
// are not expected to be safe for concurrent use.
type Environment interface {
	Reset()
	EpisodeOver() bool
	Step(action int)
	Score() float64
	State() []float64
}

// FrameRater is implemented by environments with an adjustable speed.
type FrameRater interface {
	FPS() int
	SetFPS(fps int)
}

// Factory builds a fresh environment for the i-th evaluation.
type Factory func(i int) Environment

// Evaluate runs one full episode of env under ind's policy and returns the
// final score. It blocks until the environment ends the episode.
func Evaluate(env Environment, ind *policy.Individual) (float64, error) {
	env.Reset()
	for step := 0; !env.EpisodeOver(); step++ {
		state := env.State()
		for _, v := range state {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("step %d: %w: %v", step, ErrMalformedState, state)
			}
		}
		action, err := ind.SelectAction(state)
		if err != nil {
			return 0, fmt.Errorf("step %d: %w", step, err)
		}
		env.Step(action)
	}
	return env.Score(), nil
}

// EvaluatePopulation evaluates every individual in order on a single
// environment. ctx is only checked between episodes.
func EvaluatePopulation(ctx context.Context, env Environment, pop ga.Population) ([]float64, error) {
	fitness := make([]float64, len(pop))
	for i, ind := range pop {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := Evaluate(env, ind)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		fitness[i] = score
	}
	return fitness, nil
}

// EvaluatePopulationParallel evaluates individuals concurrently, at most
// workers at a time. Every individual gets its own environment from
// factory so no instance is shared between goroutines.
func EvaluatePopulationParallel(ctx context.Context, factory Factory, pop ga.Population, workers int) ([]float64, error) {
	if workers <= 0 {
		workers = 1
	}
	fitness := make([]float64, len(pop))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ind := range pop {
		i, ind := i, ind
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			score, err := Evaluate(factory(i), ind)
			if err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}
			fitness[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fitness, nil
}
