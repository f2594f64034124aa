package train

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"dinoevo/internal/config"
	"dinoevo/internal/eval"
	"dinoevo/internal/ga"
	"dinoevo/internal/policy"
)

// patternEnv plays a fixed sequence of states and scores a point for each
// step whose action matches the target for that step.
type patternEnv struct {
	states  [][]float64
	targets []int
	step    int
	score   float64
}

func newPatternEnv() *patternEnv {
	rng := rand.New(rand.NewSource(1234))
	e := &patternEnv{}
	for i := 0; i < 30; i++ {
		s := make([]float64, 10)
		for j := range s {
			s[j] = rng.Float64()*2 - 1
		}
		e.states = append(e.states, s)
		e.targets = append(e.targets, rng.Intn(3))
	}
	return e
}

func (e *patternEnv) Reset()            { e.step, e.score = 0, 0 }
func (e *patternEnv) EpisodeOver() bool { return e.step >= len(e.states) }
func (e *patternEnv) Score() float64    { return e.score }
func (e *patternEnv) State() []float64  { return e.states[e.step] }
func (e *patternEnv) Step(action int) {
	if action == e.targets[e.step] {
		e.score++
	}
	e.step++
}

func testConfig(generations int) *config.Config {
	cfg := config.Default()
	cfg.GA.Generations = generations
	return cfg
}

func runCollecting(t *testing.T, cfg *config.Config, seed int64, opts ...Option) (ga.Generation, []ga.Generation) {
	t.Helper()
	var reported []ga.Generation
	opts = append(opts, WithReporter(ReporterFunc(func(g ga.Generation) {
		reported = append(reported, g)
	})))
	tr, err := NewTrainer(cfg, newPatternEnv(), rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	s, err := tr.Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	last, err := tr.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return last, reported
}

func TestRunReportsEveryGeneration(t *testing.T) {
	cfg := testConfig(12)
	last, reported := runCollecting(t, cfg, 7)

	if len(reported) != 12 {
		t.Fatalf("expected 12 reports, got %d", len(reported))
	}
	for i, g := range reported {
		if g.Index != i {
			t.Fatalf("report %d has index %d", i, g.Index)
		}
		if len(g.Population) != cfg.GA.Population || len(g.Fitness) != cfg.GA.Population {
			t.Fatalf("generation %d: %d individuals, %d fitness values", i, len(g.Population), len(g.Fitness))
		}
	}
	if last.Index != 11 {
		t.Fatalf("expected last generation 11, got %d", last.Index)
	}
	for i := range last.Fitness {
		if last.Fitness[i] != reported[11].Fitness[i] || last.Population[i] != reported[11].Population[i] {
			t.Fatal("returned generation does not match the last report")
		}
	}
}

func TestBestFitnessNeverDecreasesWithDeterministicEnvironment(t *testing.T) {
	_, reported := runCollecting(t, testConfig(40), 11)

	prev := -1.0
	for _, g := range reported {
		_, best := g.Best()
		if best < prev {
			t.Fatalf("generation %d best %v dropped below %v", g.Index, best, prev)
		}
		prev = best
	}
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	a, _ := runCollecting(t, testConfig(8), 99)
	b, _ := runCollecting(t, testConfig(8), 99)
	for i := range a.Population {
		wa, wb := a.Population[i].Weights(), b.Population[i].Weights()
		for k := range wa {
			if wa[k] != wb[k] {
				t.Fatalf("individual %d differs at %d", i, k)
			}
		}
		if a.Fitness[i] != b.Fitness[i] {
			t.Fatalf("fitness %d differs", i)
		}
	}
}

func TestParallelEvaluationMatchesSequential(t *testing.T) {
	seq, _ := runCollecting(t, testConfig(6), 5)

	cfg := testConfig(6)
	cfg.Eval.Workers = 4
	factory := func(int) eval.Environment { return newPatternEnv() }
	par, _ := runCollecting(t, cfg, 5, WithFactory(factory))

	for i := range seq.Fitness {
		if seq.Fitness[i] != par.Fitness[i] {
			t.Fatalf("fitness %d: sequential %v parallel %v", i, seq.Fitness[i], par.Fitness[i])
		}
	}
}

func TestStepThreadsState(t *testing.T) {
	cfg := testConfig(1)
	tr, err := NewTrainer(cfg, newPatternEnv(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	s, _ := tr.Init()
	g, next, err := tr.Step(context.Background(), s)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if g.Index != 0 || next.Generation != 1 || len(next.Population) != cfg.GA.Population {
		t.Fatalf("unexpected step result: index %d next %d size %d", g.Index, next.Generation, len(next.Population))
	}
	elites, _ := ga.Elites(g, cfg.GA.Elites)
	for i, e := range elites {
		we, wn := e.Weights(), next.Population[i].Weights()
		for k := range we {
			if we[k] != wn[k] {
				t.Fatalf("elite %d not carried over", i)
			}
		}
	}
}

func TestNewTrainerRejectsInvalidConfiguration(t *testing.T) {
	cfg := testConfig(1)
	cfg.GA.Elites = cfg.GA.Population
	if _, err := NewTrainer(cfg, newPatternEnv(), rand.New(rand.NewSource(1))); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewTrainer(testConfig(1), nil, rand.New(rand.NewSource(1))); !errors.Is(err, ga.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument without environment, got %v", err)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	tr, err := NewTrainer(testConfig(5), newPatternEnv(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	s, _ := tr.Init()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Run(ctx, s); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunRejectsPopulationOfWrongShape(t *testing.T) {
	cfg := testConfig(3)
	tr, err := NewTrainer(cfg, newPatternEnv(), rand.New(rand.NewSource(8)))
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	tests := []struct {
		name     string
		actions  int
		stateDim int
	}{
		{"extra actions", 5, 10},
		{"short state", 3, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pop, err := ga.RandomPopulation(cfg.GA.Population, tc.actions, tc.stateDim, -1, 1, rand.New(rand.NewSource(2)))
			if err != nil {
				t.Fatalf("random population: %v", err)
			}
			if _, err := tr.Run(context.Background(), State{Population: pop}); !errors.Is(err, policy.ErrDimensionMismatch) {
				t.Fatalf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestRunWithZeroGenerationsEvaluatesOnce(t *testing.T) {
	cfg := testConfig(0)
	var reports int
	tr, err := NewTrainer(cfg, newPatternEnv(), rand.New(rand.NewSource(4)),
		WithReporter(ReporterFunc(func(ga.Generation) { reports++ })))
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	s, err := tr.Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	g, err := tr.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if g.Index != 0 || len(g.Fitness) != cfg.GA.Population {
		t.Fatalf("expected generation 0 with %d scores, got index %d with %d", cfg.GA.Population, g.Index, len(g.Fitness))
	}
	for i := range s.Population {
		if g.Population[i] != s.Population[i] {
			t.Fatalf("individual %d was replaced", i)
		}
	}
	if reports != 0 {
		t.Fatalf("expected no reports, got %d", reports)
	}
}
