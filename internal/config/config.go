package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned by Validate for unusable settings.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config is the root configuration structure
type Config struct {
	Seed    int64        `yaml:"seed"`
	GA      GAConfig     `yaml:"ga"`
	Policy  PolicyConfig `yaml:"policy"`
	Env     EnvConfig    `yaml:"env"`
	Eval    EvalConfig   `yaml:"eval"`
	Logging LogConfig    `yaml:"logging"`
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population        int     `yaml:"population"`
	Elites            int     `yaml:"elites"`
	Generations       int     `yaml:"generations"`
	MutationChance    float64 `yaml:"mutation_chance"`
	CrossoverChance   float64 `yaml:"crossover_chance"`
	MutationFactorMin float64 `yaml:"mutation_factor_min"`
	MutationFactorMax float64 `yaml:"mutation_factor_max"`
	InitMin           float64 `yaml:"init_min"`
	InitMax           float64 `yaml:"init_max"`
}

// PolicyConfig defines the shape of the linear policy
type PolicyConfig struct {
	Actions  int `yaml:"actions"`
	StateDim int `yaml:"state_dim"`
}

// EnvConfig defines runner game parameters
type EnvConfig struct {
	FPS          int     `yaml:"fps"`        // 0 runs unthrottled
	ReplayFPS    int     `yaml:"replay_fps"` // used by the interactive replay
	MaxSteps     int     `yaml:"max_steps"`
	InitialSpeed float64 `yaml:"initial_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
	Acceleration float64 `yaml:"acceleration"`
	BirdsAfter   int     `yaml:"birds_after"` // score before birds appear
}

// EvalConfig defines evaluation parameters
type EvalConfig struct {
	Workers int `yaml:"workers"` // <= 1 evaluates sequentially on one environment
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level           string `yaml:"level"`
	EveryGenSummary bool   `yaml:"every_gen_summary"`
	CSVPath         string `yaml:"csv_path"`
	JSONPath        string `yaml:"json_path"`
}

// Default returns the baseline configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file and returns a Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 15
	}
	if cfg.GA.Elites == 0 {
		cfg.GA.Elites = 8
	}
	if cfg.GA.Generations == 0 {
		cfg.GA.Generations = 100
	}
	if cfg.GA.MutationChance == 0 {
		cfg.GA.MutationChance = 0.2
	}
	if cfg.GA.CrossoverChance == 0 {
		cfg.GA.CrossoverChance = 0.25
	}
	if cfg.GA.MutationFactorMin == 0 && cfg.GA.MutationFactorMax == 0 {
		cfg.GA.MutationFactorMin = 0.7
		cfg.GA.MutationFactorMax = 1.8
	}
	if cfg.GA.InitMin == 0 && cfg.GA.InitMax == 0 {
		cfg.GA.InitMin = -20
		cfg.GA.InitMax = 20
	}
	if cfg.Policy.Actions == 0 {
		cfg.Policy.Actions = 3
	}
	if cfg.Policy.StateDim == 0 {
		cfg.Policy.StateDim = 10
	}
	if cfg.Env.ReplayFPS == 0 {
		cfg.Env.ReplayFPS = 60
	}
	if cfg.Env.MaxSteps == 0 {
		cfg.Env.MaxSteps = 20000
	}
	if cfg.Env.InitialSpeed == 0 {
		cfg.Env.InitialSpeed = 6
	}
	if cfg.Env.MaxSpeed == 0 {
		cfg.Env.MaxSpeed = 13
	}
	if cfg.Env.Acceleration == 0 {
		cfg.Env.Acceleration = 0.001
	}
	if cfg.Env.BirdsAfter == 0 {
		cfg.Env.BirdsAfter = 50
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
}

// Validate checks the settings the evolution loop depends on.
func (c *Config) Validate() error {
	ga := c.GA
	switch {
	case ga.Population <= 0:
		return fmt.Errorf("%w: population must be positive, got %d", ErrInvalidConfiguration, ga.Population)
	case ga.Elites <= 0 || ga.Elites >= ga.Population:
		return fmt.Errorf("%w: elites must satisfy 0 < elites < population, got %d of %d", ErrInvalidConfiguration, ga.Elites, ga.Population)
	case ga.Generations < 0:
		return fmt.Errorf("%w: generations must not be negative, got %d", ErrInvalidConfiguration, ga.Generations)
	case !isProbability(ga.MutationChance):
		return fmt.Errorf("%w: mutation_chance %v outside [0, 1]", ErrInvalidConfiguration, ga.MutationChance)
	case !isProbability(ga.CrossoverChance):
		return fmt.Errorf("%w: crossover_chance %v outside [0, 1]", ErrInvalidConfiguration, ga.CrossoverChance)
	case ga.MutationFactorMin > ga.MutationFactorMax:
		return fmt.Errorf("%w: mutation factor range [%v, %v] is inverted", ErrInvalidConfiguration, ga.MutationFactorMin, ga.MutationFactorMax)
	case ga.InitMin > ga.InitMax:
		return fmt.Errorf("%w: init range [%v, %v] is inverted", ErrInvalidConfiguration, ga.InitMin, ga.InitMax)
	case c.Policy.Actions <= 0 || c.Policy.StateDim <= 0:
		return fmt.Errorf("%w: policy shape %dx%d", ErrInvalidConfiguration, c.Policy.Actions, c.Policy.StateDim)
	case c.Env.FPS < 0 || c.Env.ReplayFPS < 0:
		return fmt.Errorf("%w: fps must not be negative", ErrInvalidConfiguration)
	case c.Env.MaxSteps < 0:
		return fmt.Errorf("%w: max_steps must not be negative", ErrInvalidConfiguration)
	case c.Env.InitialSpeed <= 0 || c.Env.MaxSpeed < c.Env.InitialSpeed:
		return fmt.Errorf("%w: speed range [%v, %v]", ErrInvalidConfiguration, c.Env.InitialSpeed, c.Env.MaxSpeed)
	case c.Eval.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
