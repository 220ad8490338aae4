package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/holepath/internal/cluster"
	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/heuristic"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/optimize"
	"github.com/banshee-data/holepath/internal/spatial"
	"github.com/banshee-data/holepath/internal/timeutil"
	"github.com/banshee-data/holepath/internal/tour"
	"github.com/google/uuid"
)

// ErrStrategyFault marks a strategy that panicked or failed.
var ErrStrategyFault = errors.New("planner: strategy fault")

// Diagnostics are the counters reported alongside a tour.
type Diagnostics struct {
	ClusterCount int              `json:"cluster_count"`
	IndexStats   *spatial.Stats   `json:"index_stats,omitempty"`
	Heuristic    *heuristic.Stats `json:"heuristic,omitempty"`
	TwoOpt       *optimize.Stats  `json:"two_opt,omitempty"`
	Duration     time.Duration    `json:"duration"`
}

// Result is the outcome of one planning run.
type Result struct {
	RunID       uuid.UUID        `json:"run_id"`
	Tour        tour.Tour        `json:"tour"`
	Algorithm   config.Algorithm `json:"algorithm"`
	Used        config.Algorithm `json:"used"`
	Fallback    string           `json:"fallback,omitempty"`
	Diagnostics Diagnostics      `json:"diagnostics"`
	Trace       []string         `json:"trace"`
}

// Planner plans tours for one configuration. A Planner holds no per-run
// state and may be reused.
type Planner struct {
	cfg       config.PlanningConfig
	heuristic heuristic.Options
	index     spatial.Options
	newID     func() uuid.UUID
	clock     timeutil.Clock

	clusterers map[config.Algorithm]cluster.Clusterer
}

// Option configures a Planner.
type Option func(*Planner)

// WithHeuristicOptions overrides the heuristic search tuning. The Scorer is
// still replaced by the lookahead scorer when the config asks for it.
func WithHeuristicOptions(o heuristic.Options) Option {
	return func(p *Planner) { p.heuristic = o }
}

// WithIndexOptions overrides the spatial index grid settings.
func WithIndexOptions(o spatial.Options) Option {
	return func(p *Planner) { p.index = o }
}

// WithIDGenerator replaces uuid.New for run IDs.
func WithIDGenerator(f func() uuid.UUID) Option {
	return func(p *Planner) { p.newID = f }
}

// WithClusterer replaces the clustering step of alg, which must be Cluster or
// EnhancedCluster. Other algorithms ignore it. By default Cluster uses
// connectivity at the configured tolerance and EnhancedCluster uses adaptive
// clustering over the run's spatial index.
func WithClusterer(alg config.Algorithm, c cluster.Clusterer) Option {
	return func(p *Planner) {
		if p.clusterers == nil {
			p.clusterers = make(map[config.Algorithm]cluster.Clusterer)
		}
		p.clusterers[alg] = c
	}
}

// WithClock replaces the clock used to time runs.
func WithClock(c timeutil.Clock) Option {
	return func(p *Planner) { p.clock = c }
}

// New returns a Planner for cfg. The config is validated by Plan.
func New(cfg config.PlanningConfig, opts ...Option) *Planner {
	p := &Planner{
		cfg:       cfg,
		heuristic: heuristic.DefaultOptions(),
		newID:     uuid.New,
		clock:     timeutil.RealClock{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Config returns the configuration the Planner was built with.
func (p *Planner) Config() config.PlanningConfig {
	return p.cfg
}

// Plan computes a tour over points. It returns an error only for an invalid
// configuration, non-finite coordinates, or a fault in a strategy that has
// no fallback.
func (p *Planner) Plan(points []geom.Point) (Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := geom.Validate(points); err != nil {
		return Result{}, fmt.Errorf("planner: %w", err)
	}

	start := p.clock.Now()
	rec := monitoring.NewRecorder()
	res := Result{
		RunID:     p.newID(),
		Algorithm: p.cfg.Algorithm,
		Used:      p.cfg.Algorithm,
	}

	r := &run{
		cfg:        p.cfg,
		points:     p.transform(points),
		trace:      rec,
		index:      p.index,
		clusterers: p.clusterers,
		diag:       &res.Diagnostics,
	}
	rec.Printf("run %s: %d points, algorithm %s", res.RunID, len(points), p.cfg.Algorithm)

	switch len(points) {
	case 0:
		res.Tour = tour.Tour{}
	case 1:
		res.Tour = tour.FromIndices(r.points, []int{0})
	default:
		t, err := p.execute(r, p.cfg.Algorithm)
		if err != nil {
			fb, ok := fallbacks[p.cfg.Algorithm]
			if !ok {
				return Result{}, err
			}
			res.Fallback = err.Error()
			res.Used = fb
			monitoring.Opsf("run %s: %s failed, falling back to %s: %v", res.RunID, p.cfg.Algorithm, fb, err)
			rec.Printf("fallback to %s: %v", fb, err)
			if t, err = p.execute(r, fb); err != nil {
				return Result{}, err
			}
		}
		res.Tour = t
	}

	res.Diagnostics.Duration = p.clock.Since(start)
	rec.Printf("tour: %d waypoints, %d boundaries, length %.3f",
		len(res.Tour), res.Tour.Boundaries(), res.Tour.Length())
	res.Trace = rec.Lines()
	monitoring.Diagf("run %s: %s (used %s) %d waypoints in %s",
		res.RunID, res.Algorithm, res.Used, len(res.Tour), res.Diagnostics.Duration)
	return res, nil
}

func (p *Planner) transform(points []geom.Point) []geom.Point {
	work := points
	if p.cfg.Center {
		work = geom.Centered(work)
	}
	return geom.Rotate(work, p.cfg.RotationAngleDegrees)
}

var fallbacks = map[config.Algorithm]config.Algorithm{
	config.HeuristicSearch: config.NearestNeighbor,
	config.SpiralFill:      config.Cluster,
	config.EnhancedCluster: config.Cluster,
}

// execute runs one strategy, turning a panic into an ErrStrategyFault.
func (p *Planner) execute(r *run, alg config.Algorithm) (t tour.Tour, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			t = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrStrategyFault, alg, rec)
		}
	}()

	t, err = r.strategy(alg, p.heuristic)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStrategyFault, alg, err)
	}
	return t, nil
}

// Run executes Plan on its own goroutine. If ctx ends first Run returns
// ctx.Err() and the eventual result is discarded.
func Run(ctx context.Context, points []geom.Point, cfg config.PlanningConfig, opts ...Option) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	p := New(cfg, opts...)
	go func() {
		res, err := p.Plan(points)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}
