package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"dinoevo/internal/config"
	"dinoevo/internal/env"
	"dinoevo/internal/eval"
	"dinoevo/internal/ga"
	"dinoevo/internal/logging"
	"dinoevo/internal/policy"
	"dinoevo/internal/train"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	generations := flag.Int("generations", 0, "number of generations to run (overrides config)")
	seed := flag.Int64("seed", 0, "random seed (overrides config)")
	noReplay := flag.Bool("no-replay", false, "skip the interactive replay of the best individual")
	render := flag.Bool("render", false, "draw the track while replaying")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *generations, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Logging.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *noReplay, *render); err != nil {
		log.Error("training failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string, generations int, seed int64) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if generations > 0 {
		cfg.GA.Generations = generations
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if cfg.Policy.Actions != env.NumActions || cfg.Policy.StateDim != env.StateDim {
		return nil, fmt.Errorf("%w: policy shape %dx%d does not match the runner game (%dx%d)",
			config.ErrInvalidConfiguration, cfg.Policy.Actions, cfg.Policy.StateDim, env.NumActions, env.StateDim)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, noReplay, render bool) error {
	runID := uuid.NewString()
	log = log.With("run_id", runID)
	log.Info("starting training",
		"seed", cfg.Seed,
		"population", cfg.GA.Population,
		"elites", cfg.GA.Elites,
		"generations", cfg.GA.Generations,
		"workers", cfg.Eval.Workers,
	)

	// Create logger
	logger, err := logging.NewLogger(runID, cfg.Logging.CSVPath, cfg.Logging.JSONPath, os.Stdout, log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	game := env.NewGame(cfg.Env, cfg.Seed)
	factory := func(i int) eval.Environment {
		return env.NewGame(cfg.Env, cfg.Seed+int64(i)+1)
	}

	reporter := train.ReporterFunc(func(g ga.Generation) {
		summary := logger.LogGeneration(g)
		if cfg.Logging.EveryGenSummary {
			log.Info("generation", "index", g.Index, "best", summary.Best, "mean", summary.Mean, "std", summary.Std)
		}
	})

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainer, err := train.NewTrainer(cfg, game, rng,
		train.WithFactory(factory),
		train.WithReporter(reporter),
		train.WithLogger(log),
	)
	if err != nil {
		return err
	}

	state, err := trainer.Init()
	if err != nil {
		return err
	}

	startTime := time.Now()
	logger.PrintHeader(cfg.GA.Population)
	last, err := trainer.Run(ctx, state)
	if err != nil {
		return err
	}
	log.Info("training complete", "elapsed", time.Since(startTime).Round(time.Millisecond))

	best, fitness := last.Best()
	fmt.Printf("Best individual (fitness %.1f):\n%v\n", fitness, best)

	if noReplay {
		return nil
	}
	var replayEnv eval.Environment = game
	if render {
		replayEnv = renderingEnv{Game: game, display: NewDisplay(os.Stdout, 60, 4)}
	}
	return replay(ctx, game, replayEnv, best, cfg.Env.ReplayFPS, os.Stdin, os.Stdout)
}

// statsReporter is implemented by environments that record how the last
// episode ended.
type statsReporter interface {
	Stats() env.EpisodeStats
}

// replay runs the best individual once per input line until the user
// types q, input ends or ctx is cancelled. The game's frame rate is raised
// to fps while replaying and restored afterwards.
func replay(ctx context.Context, rater eval.FrameRater, e eval.Environment, best *policy.Individual, fps int, in io.Reader, out io.Writer) error {
	oldFPS := rater.FPS()
	rater.SetFPS(fps)
	defer rater.SetFPS(oldFPS)

	// The reader goroutine stays blocked on in after a cancellation until
	// the process exits.
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, "Press enter to run the best agent, or type q to quit. ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = l
		}
		if strings.TrimSpace(line) == "q" {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		score, err := eval.Evaluate(e, best)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Fitness: %4.1f\n", score)
		if sr, ok := e.(statsReporter); ok {
			st := sr.Stats()
			fmt.Fprintf(out, "  %s after %d steps (distance %.0f)\n", st.End, st.Steps, st.Distance)
		}
	}
}
