package train

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"dinoevo/internal/config"
	"dinoevo/internal/eval"
	"dinoevo/internal/ga"
	"dinoevo/internal/policy"
)

// Reporter receives every evaluated generation.
type Reporter interface {
	Report(g ga.Generation)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(g ga.Generation)

// Report calls f(g).
func (f ReporterFunc) Report(g ga.Generation) { f(g) }

// State is the loop state threaded between steps: the population still to
// be evaluated and its generation index.
type State struct {
	Population ga.Population
	Generation int
}

// Trainer drives the evaluate / select-and-breed cycle.
type Trainer struct {
	cfg      *config.Config
	env      eval.Environment
	factory  eval.Factory
	rng      *rand.Rand
	reporter Reporter
	log      *slog.Logger
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithFactory enables parallel evaluation when cfg.Eval.Workers > 1.
func WithFactory(f eval.Factory) Option {
	return func(t *Trainer) { t.factory = f }
}

// WithReporter sets the per-generation reporter.
func WithReporter(r Reporter) Option {
	return func(t *Trainer) { t.reporter = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) { t.log = l }
}

// NewTrainer validates cfg and builds a trainer that evaluates on env.
// rng is used for initialization and breeding only.
func NewTrainer(cfg *config.Config, env eval.Environment, rng *rand.Rand, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("%w: environment is required", ga.ErrInvalidArgument)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ga.ErrInvalidArgument)
	}
	t := &Trainer{cfg: cfg, env: env, rng: rng, log: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Init creates generation 0.
func (t *Trainer) Init() (State, error) {
	pop, err := ga.RandomPopulation(
		t.cfg.GA.Population,
		t.cfg.Policy.Actions,
		t.cfg.Policy.StateDim,
		t.cfg.GA.InitMin,
		t.cfg.GA.InitMax,
		t.rng,
	)
	if err != nil {
		return State{}, err
	}
	return State{Population: pop}, nil
}

// Evaluate measures the fitness of s's population and pairs the two.
func (t *Trainer) Evaluate(ctx context.Context, s State) (ga.Generation, error) {
	if err := t.checkShapes(s.Population); err != nil {
		return ga.Generation{}, fmt.Errorf("generation %d: %w", s.Generation, err)
	}
	var (
		fitness []float64
		err     error
	)
	if t.factory != nil && t.cfg.Eval.Workers > 1 {
		fitness, err = eval.EvaluatePopulationParallel(ctx, t.factory, s.Population, t.cfg.Eval.Workers)
	} else {
		fitness, err = eval.EvaluatePopulation(ctx, t.env, s.Population)
	}
	if err != nil {
		return ga.Generation{}, fmt.Errorf("generation %d: %w", s.Generation, err)
	}
	return ga.NewGeneration(s.Generation, s.Population, fitness)
}

// checkShapes rejects individuals that do not match the configured policy
// shape. An individual with extra rows would pick actions the game does not
// know.
func (t *Trainer) checkShapes(pop ga.Population) error {
	for i, ind := range pop {
		if ind == nil {
			return fmt.Errorf("%w: individual %d is nil", ga.ErrInvalidArgument, i)
		}
		r, c := ind.Dims()
		if r != t.cfg.Policy.Actions || c != t.cfg.Policy.StateDim {
			return fmt.Errorf("%w: individual %d is %dx%d, want %dx%d",
				policy.ErrDimensionMismatch, i, r, c, t.cfg.Policy.Actions, t.cfg.Policy.StateDim)
		}
	}
	return nil
}

// Step evaluates s, reports it and breeds the next state.
func (t *Trainer) Step(ctx context.Context, s State) (ga.Generation, State, error) {
	g, err := t.Evaluate(ctx, s)
	if err != nil {
		return ga.Generation{}, s, err
	}
	if t.reporter != nil {
		t.reporter.Report(g)
	}

	next, err := ga.NextGeneration(g, t.cfg.GA, t.rng)
	if err != nil {
		return g, s, fmt.Errorf("generation %d: %w", g.Index, err)
	}
	return g, State{Population: next, Generation: s.Generation + 1}, nil
}

// Run performs cfg.GA.Generations steps starting from s and returns the
// last evaluated generation, whose population and fitness correspond.
func (t *Trainer) Run(ctx context.Context, s State) (ga.Generation, error) {
	var last ga.Generation
	if t.cfg.GA.Generations == 0 {
		return t.Evaluate(ctx, s)
	}
	for i := 0; i < t.cfg.GA.Generations; i++ {
		g, next, err := t.Step(ctx, s)
		if err != nil {
			return last, err
		}
		_, best := g.Best()
		t.log.Debug("generation evaluated", "generation", g.Index, "best", best)
		last, s = g, next
	}
	_, best := last.Best()
	t.log.Info("training finished", "generations", t.cfg.GA.Generations, "best", best)
	return last, nil
}
