package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesBaseline(t *testing.T) {
	cfg := Default()
	if cfg.GA.Population != 15 || cfg.GA.Elites != 8 || cfg.GA.Generations != 100 {
		t.Fatalf("unexpected ga sizes: %+v", cfg.GA)
	}
	if cfg.GA.MutationChance != 0.2 || cfg.GA.CrossoverChance != 0.25 {
		t.Fatalf("unexpected chances: %+v", cfg.GA)
	}
	if cfg.GA.MutationFactorMin != 0.7 || cfg.GA.MutationFactorMax != 1.8 {
		t.Fatalf("unexpected mutation factor range: %+v", cfg.GA)
	}
	if cfg.GA.InitMin != -20 || cfg.GA.InitMax != 20 {
		t.Fatalf("unexpected init range: %+v", cfg.GA)
	}
	if cfg.Policy.Actions != 3 || cfg.Policy.StateDim != 10 {
		t.Fatalf("unexpected policy shape: %+v", cfg.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadAppliesOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := []byte(`seed: 7
ga:
  population: 30
  elites: 5
  generations: 12
eval:
  workers: 4
logging:
  every_gen_summary: true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.GA.Population != 30 || cfg.GA.Elites != 5 || cfg.GA.Generations != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Eval.Workers != 4 || !cfg.Logging.EveryGenSummary {
		t.Fatalf("eval/logging overrides not applied: %+v %+v", cfg.Eval, cfg.Logging)
	}
	if cfg.GA.MutationChance != 0.2 || cfg.Policy.StateDim != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{name: "elites equal population", yaml: "ga:\n  population: 8\n  elites: 8\n"},
		{name: "elites above population", yaml: "ga:\n  population: 4\n  elites: 9\n"},
		{name: "negative population", yaml: "ga:\n  population: -1\n"},
		{name: "negative elites", yaml: "ga:\n  elites: -2\n"},
		{name: "mutation chance above one", yaml: "ga:\n  mutation_chance: 1.5\n"},
		{name: "negative crossover chance", yaml: "ga:\n  crossover_chance: -0.1\n"},
		{name: "inverted factor range", yaml: "ga:\n  mutation_factor_min: 2\n  mutation_factor_max: 1\n"},
		{name: "inverted init range", yaml: "ga:\n  init_min: 5\n  init_max: -5\n"},
		{name: "negative fps", yaml: "env:\n  fps: -1\n"},
		{name: "negative workers", yaml: "eval:\n  workers: -3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("ga: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}
