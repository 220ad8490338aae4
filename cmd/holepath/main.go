// Command holepath plans a visiting order over a file of hole centres and
// writes the tour as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/planner"
	"github.com/banshee-data/holepath/internal/pointio"
	"github.com/banshee-data/holepath/internal/tour"
	"github.com/banshee-data/holepath/internal/version"
)

// Config holds the command line options.
type Config struct {
	PointsFile  string
	ConfigFile  string
	Algorithm   string
	Rotation    float64
	RotationSet bool
	OutFile     string
	Trace       bool
	ShowVersion bool
}

// Output is the JSON document written to -out.
type Output struct {
	RunID       string              `json:"run_id"`
	Source      string              `json:"source"`
	Algorithm   config.Algorithm    `json:"algorithm"`
	Used        config.Algorithm    `json:"used"`
	Fallback    string              `json:"fallback,omitempty"`
	Summary     tour.Summary        `json:"summary"`
	Diagnostics planner.Diagnostics `json:"diagnostics"`
	Tour        tour.Tour           `json:"tour"`
	Trace       []string            `json:"trace,omitempty"`
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		monitoring.Fatalf("Invalid arguments: %v", err)
	}
	if cfg.ShowVersion {
		fmt.Println(version.String("holepath"))
		return
	}

	writers := monitoring.LogWriters{Ops: os.Stderr}
	if cfg.Trace {
		writers.Diag = os.Stderr
		writers.Trace = os.Stderr
	}
	monitoring.SetLogWriters(writers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := writeTour(ctx, cfg, os.Stdout); err != nil {
		monitoring.Fatalf("Planning failed: %v", err)
	}
	if cfg.OutFile != "" {
		monitoring.Logf("Tour written to: %s", cfg.OutFile)
	}
}

// writeTour runs the planner and writes the JSON to cfg.OutFile, or to stdout
// when no file is set. The file is closed before returning and a failed
// close is reported.
func writeTour(ctx context.Context, cfg Config, stdout io.Writer) error {
	if cfg.OutFile == "" {
		return run(ctx, cfg, stdout)
	}
	f, err := os.Create(filepath.Clean(cfg.OutFile))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := run(ctx, cfg, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}

	fs.StringVar(&cfg.PointsFile, "points", "", "Point file to plan (.csv or .json)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Planning config JSON (defaults apply when omitted)")
	fs.StringVar(&cfg.Algorithm, "algorithm", "", "Override the configured algorithm")
	fs.Float64Var(&cfg.Rotation, "rotation", 0, "Override the rotation angle in degrees")
	fs.StringVar(&cfg.OutFile, "out", "", "Write the tour JSON here instead of stdout")
	fs.BoolVar(&cfg.Trace, "trace", false, "Log diag and trace streams to stderr and include the trace in the output")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "rotation" {
			cfg.RotationSet = true
		}
	})
	if !cfg.ShowVersion && cfg.PointsFile == "" {
		return cfg, errors.New("-points is required")
	}
	return cfg, nil
}

// planningConfig loads the config file, if any, and applies flag overrides.
func planningConfig(cfg Config) (config.PlanningConfig, error) {
	file := &config.PlanningFile{}
	if cfg.ConfigFile != "" {
		f, err := config.LoadPlanningFile(cfg.ConfigFile)
		if err != nil {
			return config.PlanningConfig{}, err
		}
		file = f
	}
	pc, err := file.Resolve()
	if err != nil {
		return config.PlanningConfig{}, err
	}
	if cfg.Algorithm != "" {
		alg, err := config.ParseAlgorithm(cfg.Algorithm)
		if err != nil {
			return config.PlanningConfig{}, err
		}
		pc.Algorithm = alg
	}
	if cfg.RotationSet {
		pc.RotationAngleDegrees = cfg.Rotation
	}
	return pc, pc.Validate()
}

func run(ctx context.Context, cfg Config, w io.Writer) error {
	pc, err := planningConfig(cfg)
	if err != nil {
		return err
	}
	points, err := pointio.Load(cfg.PointsFile)
	if err != nil {
		return err
	}

	res, err := planner.Run(ctx, points, pc)
	if err != nil {
		return err
	}

	out := Output{
		RunID:       res.RunID.String(),
		Source:      cfg.PointsFile,
		Algorithm:   res.Algorithm,
		Used:        res.Used,
		Fallback:    res.Fallback,
		Summary:     tour.Summarize(res.Tour, len(points)),
		Diagnostics: res.Diagnostics,
		Tour:        res.Tour,
	}
	if cfg.Trace {
		out.Trace = res.Trace
	}
	monitoring.Diagf("%s tour of %s\n%s", res.Used, cfg.PointsFile, out.Summary)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
