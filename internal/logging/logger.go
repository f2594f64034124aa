package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dinoevo/internal/ga"
)

// Logger handles all training output: the console table plus CSV and
// JSON-lines files with one record per generation.
type Logger struct {
	RunID string

	csvPath     string
	jsonPath    string
	console     io.Writer
	log         *slog.Logger
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	initialized bool
}

// NewLogger creates a new logger. Empty paths disable the matching file.
func NewLogger(runID, csvPath, jsonPath string, console io.Writer, log *slog.Logger) (*Logger, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Logger{
		RunID:    runID,
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  console,
		log:      log,
	}

	// Ensure directories exist
	for _, p := range []string{csvPath, jsonPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Init opens the log files and writes the CSV header
func (l *Logger) Init() error {
	var err error

	if l.csvPath != "" {
		l.csvFile, err = os.Create(l.csvPath)
		if err != nil {
			return err
		}
		l.csvWriter = csv.NewWriter(l.csvFile)
		header := []string{"run_id", "generation", "best", "mean", "std", "worst", "scores"}
		if err := l.csvWriter.Write(header); err != nil {
			return err
		}
	}

	if l.jsonPath != "" {
		l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
	}

	l.initialized = true
	return nil
}

// Close closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	RunID      string    `json:"run_id"`
	Generation int       `json:"generation"`
	Best       float64   `json:"best"`
	Mean       float64   `json:"mean"`
	Std        float64   `json:"std"`
	Worst      float64   `json:"worst"`
	Scores     []float64 `json:"scores"` // descending
}

// Summarize computes the statistics of one evaluated generation.
func Summarize(runID string, g ga.Generation) GenerationSummary {
	scores := append([]float64(nil), g.Fitness...)
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	s := GenerationSummary{RunID: runID, Generation: g.Index, Scores: scores}
	if len(scores) == 0 {
		return s
	}
	s.Best = floats.Max(scores)
	s.Worst = floats.Min(scores)
	if len(scores) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(scores, nil)
	} else {
		s.Mean = scores[0]
	}
	return s
}

// PrintHeader writes the column header of the console table.
func (l *Logger) PrintHeader(populationSize int) {
	if l.console == nil {
		return
	}
	fmt.Fprintf(l.console, "ger | fitness\n----+-%s\n", strings.Repeat("-", 5*populationSize))
}

// LogGeneration logs a generation summary
func (l *Logger) LogGeneration(g ga.Generation) GenerationSummary {
	summary := Summarize(l.RunID, g)

	if l.console != nil {
		cells := make([]string, len(summary.Scores))
		for i, s := range summary.Scores {
			cells[i] = fmt.Sprintf("%4d", int64(s))
		}
		fmt.Fprintf(l.console, "%3d | %s\n", g.Index, strings.Join(cells, " "))
	}

	if !l.initialized {
		return summary
	}

	if l.csvWriter != nil {
		scores := make([]string, len(summary.Scores))
		for i, s := range summary.Scores {
			scores[i] = strconv.FormatFloat(s, 'f', -1, 64)
		}
		row := []string{
			summary.RunID,
			strconv.Itoa(summary.Generation),
			fmt.Sprintf("%.2f", summary.Best),
			fmt.Sprintf("%.2f", summary.Mean),
			fmt.Sprintf("%.2f", summary.Std),
			fmt.Sprintf("%.2f", summary.Worst),
			strings.Join(scores, " "),
		}
		if err := l.csvWriter.Write(row); err != nil {
			l.log.Warn("write csv row", "generation", g.Index, "err", err)
		}
		l.csvWriter.Flush()
	}

	if l.jsonFile != nil {
		line, err := json.Marshal(summary)
		if err != nil {
			l.log.Warn("encode summary", "generation", g.Index, "err", err)
		} else if _, err := l.jsonFile.Write(append(line, '\n')); err != nil {
			l.log.Warn("write json line", "generation", g.Index, "err", err)
		}
	}

	l.log.Debug("generation",
		"run_id", l.RunID,
		"generation", summary.Generation,
		"best", summary.Best,
		"mean", summary.Mean,
		"std", summary.Std,
	)
	return summary
}

// ParseLevel maps a config level name to a slog level; unknown names map
// to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
