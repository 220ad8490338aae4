// Package main runs every planning strategy over one point set and compares
// the resulting tours. Results can be plotted and recorded into SQLite.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/planner"
	"github.com/banshee-data/holepath/internal/plot"
	"github.com/banshee-data/holepath/internal/pointio"
	"github.com/banshee-data/holepath/internal/runstore"
	"github.com/banshee-data/holepath/internal/tour"
	"github.com/banshee-data/holepath/internal/version"
	"github.com/google/uuid"
)

// Config holds configuration for the comparison.
type Config struct {
	PointsFile  string
	ConfigFile  string
	Random      int
	Seed        uint64
	Extent      float64
	PlotsDir    string
	DBPath      string
	SavePoints  string
	OutputJSON  string
	Verbose     bool
	ShowVersion bool
}

// ComparisonResult holds the outcome of every strategy on one point set.
type ComparisonResult struct {
	RunID      string                `json:"run_id"`
	Source     string                `json:"source"`
	PointCount int                   `json:"point_count"`
	Config     config.PlanningConfig `json:"config"`
	Strategies []StrategyOutcome     `json:"strategies"`
}

// StrategyOutcome is one strategy's tour and its metrics.
type StrategyOutcome struct {
	Algorithm config.Algorithm `json:"algorithm"`
	Used      config.Algorithm `json:"used"`
	Fallback  string           `json:"fallback,omitempty"`
	Summary   tour.Summary     `json:"summary"`
	Duration  time.Duration    `json:"duration_ns"`
	Tour      tour.Tour        `json:"-"`
}

func main() {
	cfg := parseFlags()
	if cfg.ShowVersion {
		fmt.Println(version.String("tour-compare"))
		return
	}
	if err := cfg.check(); err != nil {
		monitoring.Fatalf("Invalid arguments: %v", err)
	}

	writers := monitoring.LogWriters{Ops: os.Stderr}
	if cfg.Verbose {
		writers.Diag = os.Stderr
	}
	monitoring.SetLogWriters(writers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runComparison(ctx, cfg)
	if err != nil {
		monitoring.Fatalf("Comparison failed: %v", err)
	}

	printResults(os.Stdout, result)

	if cfg.OutputJSON != "" {
		if err := exportJSON(result, cfg.OutputJSON); err != nil {
			monitoring.Logf("Warning: failed to export JSON: %v", err)
		} else {
			monitoring.Logf("Results exported to: %s", cfg.OutputJSON)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.PointsFile, "points", "", "Point file to compare on (.csv or .json)")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Planning config JSON shared by every strategy")
	flag.IntVar(&cfg.Random, "random", 0, "Generate this many uniform random points instead of reading -points")
	flag.Uint64Var(&cfg.Seed, "seed", 1, "Seed for -random")
	flag.Float64Var(&cfg.Extent, "extent", 1000, "Side length of the square -random samples from")
	flag.StringVar(&cfg.PlotsDir, "plots", "", "Directory for PNG plots and tours.html")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite database to record the run into")
	flag.StringVar(&cfg.SavePoints, "save-points", "", "Write the point set as CSV (useful with -random)")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()

	return cfg
}

func (c Config) check() error {
	switch {
	case c.PointsFile == "" && c.Random <= 0:
		return errors.New("either -points or -random N is required")
	case c.PointsFile != "" && c.Random > 0:
		return errors.New("-points and -random are mutually exclusive")
	case c.Random > 0 && !(c.Extent > 0):
		return fmt.Errorf("-extent must be positive, got %v", c.Extent)
	}
	return nil
}

// randomPoints samples n points uniformly from [0, extent)².
func randomPoints(n int, seed uint64, extent float64) []geom.Point {
	rng := rand.New(rand.NewPCG(seed, seed))
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Point{X: rng.Float64() * extent, Y: rng.Float64() * extent}
	}
	return pts
}

func loadInput(cfg Config) (points []geom.Point, source string, err error) {
	if cfg.Random > 0 {
		return randomPoints(cfg.Random, cfg.Seed, cfg.Extent), fmt.Sprintf("random:n=%d,seed=%d", cfg.Random, cfg.Seed), nil
	}
	points, err = pointio.Load(cfg.PointsFile)
	return points, cfg.PointsFile, err
}

func loadPlanningConfig(path string) (config.PlanningConfig, error) {
	if path == "" {
		return config.DefaultPlanningConfig(), nil
	}
	f, err := config.LoadPlanningFile(path)
	if err != nil {
		return config.PlanningConfig{}, err
	}
	return f.Resolve()
}

func runComparison(ctx context.Context, cfg Config) (*ComparisonResult, error) {
	points, source, err := loadInput(cfg)
	if err != nil {
		return nil, err
	}
	base, err := loadPlanningConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cfg.SavePoints != "" {
		if err := savePoints(points, cfg.SavePoints); err != nil {
			return nil, err
		}
	}

	monitoring.Logf("Comparing %d strategies on %s (%d points)", len(config.Algorithms()), source, len(points))

	result := &ComparisonResult{
		RunID:      uuid.New().String(),
		Source:     source,
		PointCount: len(points),
		Config:     base,
	}
	for _, alg := range config.Algorithms() {
		pc := base
		pc.Algorithm = alg
		res, err := planner.Run(ctx, points, pc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		result.Strategies = append(result.Strategies, StrategyOutcome{
			Algorithm: alg,
			Used:      res.Used,
			Fallback:  res.Fallback,
			Summary:   tour.Summarize(res.Tour, len(points)),
			Duration:  res.Diagnostics.Duration,
			Tour:      res.Tour,
		})
	}

	if cfg.PlotsDir != "" {
		if err := writePlots(result, cfg.PlotsDir); err != nil {
			return nil, err
		}
	}
	if cfg.DBPath != "" {
		if err := recordRun(result, cfg.DBPath); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func savePoints(points []geom.Point, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return pointio.WriteCSV(w, points)
	})
}

// writeFile creates path, hands it to write and closes it. A failed close is
// returned when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writePlots(result *ComparisonResult, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plots directory: %w", err)
	}

	named := make([]plot.NamedTour, 0, len(result.Strategies))
	for _, s := range result.Strategies {
		title := s.Algorithm.String()
		if s.Used != s.Algorithm {
			title = fmt.Sprintf("%s (fell back to %s)", s.Algorithm, s.Used)
		}
		if err := plot.SavePNG(s.Tour, title, filepath.Join(dir, s.Algorithm.String()+".png")); err != nil {
			return err
		}
		named = append(named, plot.NamedTour{Name: title, Tour: s.Tour})
	}

	err := writeFile(filepath.Join(dir, "tours.html"), func(w io.Writer) error {
		return plot.WriteHTML(w, named)
	})
	if err != nil {
		return err
	}
	monitoring.Logf("Plots written to: %s", dir)
	return nil
}

func recordRun(result *ComparisonResult, path string) error {
	store, err := runstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	cfgJSON, err := json.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	run := &runstore.ComparisonRun{
		RunID:      result.RunID,
		Source:     result.Source,
		PointCount: result.PointCount,
		ConfigJSON: cfgJSON,
	}
	if err := store.InsertRun(run); err != nil {
		return err
	}
	for _, s := range result.Strategies {
		r := runstore.NewStrategyResult(result.RunID, s.Algorithm.String(), s.Used.String(), s.Fallback, s.Summary, s.Duration)
		if err := store.InsertResult(r); err != nil {
			return err
		}
	}
	monitoring.Logf("Run %s recorded in: %s", result.RunID, path)
	return nil
}

func printResults(w io.Writer, result *ComparisonResult) {
	fmt.Fprintln(w, "\n=== Tour Comparison Results ===")
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Source: %s\n", result.Source)
	fmt.Fprintf(w, "Points: %d\n", result.PointCount)

	fmt.Fprintln(w, "\n--- Per-Strategy Metrics ---")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\tused\tvisits\tconnectors\tgroups\tlength\treversals\ttime")
	for _, s := range result.Strategies {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f\t%d\t%s\n",
			s.Algorithm, s.Used, s.Summary.Visits, s.Summary.Connectors,
			s.Summary.Boundaries+1, s.Summary.Length, s.Summary.Reversals,
			s.Duration.Round(time.Microsecond))
	}
	tw.Flush()

	for _, s := range result.Strategies {
		if s.Fallback != "" {
			fmt.Fprintf(w, "\n%s fell back to %s: %s\n", s.Algorithm, s.Used, s.Fallback)
		}
	}
}

func exportJSON(result *ComparisonResult, path string) error {
	return writeFile(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	})
}
