package planner

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/holepath/internal/cluster"
	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/heuristic"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/snake"
	"github.com/banshee-data/holepath/internal/spiral"
	"github.com/banshee-data/holepath/internal/timeutil"
	"github.com/banshee-data/holepath/internal/tour"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(seed int64, n int, size float64) []geom.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Point{X: rng.Float64() * size, Y: rng.Float64() * size}
	}
	return pts
}

func withAlgorithm(a config.Algorithm) config.PlanningConfig {
	cfg := config.DefaultPlanningConfig()
	cfg.Algorithm = a
	return cfg
}

func TestPlanEmptyAndSingle(t *testing.T) {
	t.Parallel()

	for _, alg := range config.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			p := New(withAlgorithm(alg))

			res, err := p.Plan(nil)
			require.NoError(t, err)
			assert.Empty(t, res.Tour)
			assert.NotNil(t, res.Tour)
			assert.Empty(t, res.Fallback)

			res, err = p.Plan([]geom.Point{{X: 4, Y: 2}})
			require.NoError(t, err)
			require.Len(t, res.Tour, 1)
			v, ok := res.Tour[0].(tour.PointVisit)
			require.True(t, ok)
			assert.Equal(t, 0, v.Index)
			assert.False(t, v.Connector)
		})
	}
}

func TestPlanCompleteness(t *testing.T) {
	t.Parallel()

	pts := uniform(3, 400, 500)
	pts = append(pts, pts[10], pts[20])

	for _, alg := range config.Algorithms() {
		for _, strict := range []bool{false, true} {
			cfg := withAlgorithm(alg)
			cfg.StrictSnake = strict
			cfg.ClusterTolerance = 60
			cfg.SpiralRadiusIncrement = 5

			res, err := New(cfg).Plan(pts)
			require.NoError(t, err, "%s strict=%v", alg, strict)
			require.NoError(t, res.Tour.CheckPermutation(len(pts)), "%s strict=%v", alg, strict)
			assert.Equal(t, alg, res.Used, "%s should not fall back: %s", alg, res.Fallback)
			assert.NotEmpty(t, res.Trace)
			if strict {
				assert.Zero(t, res.Tour.Connectors(), "%s strict", alg)
			}
		}
	}
}

func TestPlanVisitsCarryTransformedPoints(t *testing.T) {
	t.Parallel()

	pts := []geom.Point{{X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}}
	cfg := withAlgorithm(config.NearestNeighbor)
	cfg.RotationAngleDegrees = 90

	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	require.Len(t, res.Tour.Visits(), 3)
	for _, v := range res.Tour.Visits() {
		assert.InDelta(t, 0, v.Point.X, 1e-9)
		assert.InDelta(t, pts[v.Index].X, v.Point.Y, 1e-9)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, res.Tour.Indices()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanCenter(t *testing.T) {
	t.Parallel()

	pts := []geom.Point{{X: 100, Y: 100}, {X: 102, Y: 100}, {X: 104, Y: 100}}
	cfg := withAlgorithm(config.SnakePath)
	cfg.Center = true

	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	got := res.Tour.Points()
	want := []geom.Point{{X: -2, Y: 0}, {X: 0, Y: 0}, {X: 2, Y: 0}}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-9)
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := New(config.DefaultPlanningConfig()).Plan([]geom.Point{{X: 1}, {X: math.NaN()}})
	assert.True(t, errors.Is(err, geom.ErrNonFinite))

	cfg := config.DefaultPlanningConfig()
	cfg.PointTolerance = -1
	_, err = New(cfg).Plan([]geom.Point{{X: 1}})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestPlanClusterStitching(t *testing.T) {
	t.Parallel()

	// Two 3x4 blocks far apart on the X axis.
	var pts []geom.Point
	for _, ox := range []float64{0, 1000} {
		for row := 0; row < 3; row++ {
			for col := 0; col < 4; col++ {
				pts = append(pts, geom.Point{X: ox + float64(col)*10, Y: float64(row) * 10})
			}
		}
	}
	cfg := withAlgorithm(config.Cluster)
	cfg.ClusterTolerance = 50
	cfg.PointTolerance = 1
	cfg.StrictSnake = true

	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))
	assert.Equal(t, 2, res.Diagnostics.ClusterCount)
	assert.Equal(t, 1, res.Tour.Boundaries())

	// The first block ends at its top-right corner (odd row count). The second
	// block is entered at whichever end is closer, which is its start (1000,0)
	// rather than its end (1030,20).
	idx := res.Tour.Indices()
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, 11, idx[11])
	assert.Equal(t, 12, idx[12])

	_, isBoundary := res.Tour[12].(tour.GroupBoundary)
	assert.True(t, isBoundary)
}

func TestAssembleMultiRegionReverses(t *testing.T) {
	t.Parallel()

	pts := []geom.Point{{X: 0}, {X: 1}, {X: 10}, {X: 20}}
	clusters := []cluster.Cluster{
		cluster.New(pts, []int{0, 1}),
		cluster.New(pts, []int{3, 2}),
	}
	inMemberOrder := func(c cluster.Cluster) []snake.Step {
		steps := make([]snake.Step, len(c.Members))
		for i, m := range c.Members {
			steps[i] = snake.Step{Index: m}
		}
		return steps
	}

	got := AssembleMultiRegion(pts, clusters, inMemberOrder)
	want := tour.Tour{
		tour.PointVisit{Point: pts[0], Index: 0},
		tour.PointVisit{Point: pts[1], Index: 1},
		tour.GroupBoundary{},
		tour.PointVisit{Point: pts[2], Index: 2},
		tour.PointVisit{Point: pts[3], Index: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tour mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanSpiralFallsBackToCluster(t *testing.T) {
	t.Parallel()

	cfg := withAlgorithm(config.SpiralFill)
	cfg.SpiralAngleStep = 0

	pts := uniform(5, 50, 100)
	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	assert.Equal(t, config.SpiralFill, res.Algorithm)
	assert.Equal(t, config.Cluster, res.Used)
	assert.Contains(t, res.Fallback, spiral.ErrInvalidStep.Error())
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))

	var sawFallback bool
	for _, line := range res.Trace {
		if strings.HasPrefix(line, "fallback to cluster") {
			sawFallback = true
		}
	}
	assert.True(t, sawFallback, "trace: %v", res.Trace)
}

func TestPlanNegativeTolerancesUseOneCluster(t *testing.T) {
	t.Parallel()

	pts := uniform(11, 50, 100)
	for _, alg := range []config.Algorithm{config.Cluster, config.SnakePath} {
		t.Run(alg.String(), func(t *testing.T) {
			cfg := withAlgorithm(alg)
			cfg.ClusterTolerance = -1
			cfg.PointTolerance = -1

			res, err := New(cfg).Plan(pts)
			require.NoError(t, err)
			assert.Empty(t, res.Fallback)
			assert.Equal(t, 1, res.Diagnostics.ClusterCount)
			assert.Equal(t, 0, res.Tour.Boundaries())
			assert.Equal(t, 0, res.Tour.Connectors())
			require.NoError(t, res.Tour.CheckPermutation(len(pts)))

			// One row walked left to right.
			got := res.Tour.Points()
			for i := 1; i < len(got); i++ {
				assert.LessOrEqual(t, got[i-1].X, got[i].X, "position %d", i)
			}
		})
	}
}

// splitClusterer puts points left of X into one cluster and the rest into
// another.
type splitClusterer struct {
	X float64
}

func (s splitClusterer) Cluster(points []geom.Point) []cluster.Cluster {
	var left, right []int
	for i, p := range points {
		if p.X < s.X {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return []cluster.Cluster{cluster.New(points, left), cluster.New(points, right)}
}

type panicClusterer struct{}

func (panicClusterer) Cluster([]geom.Point) []cluster.Cluster {
	panic("clusterer exploded")
}

func TestPlanWithClusterer(t *testing.T) {
	t.Parallel()

	pts := uniform(13, 60, 100)
	for _, alg := range []config.Algorithm{config.Cluster, config.EnhancedCluster} {
		t.Run(alg.String(), func(t *testing.T) {
			res, err := New(withAlgorithm(alg), WithClusterer(alg, splitClusterer{X: 50})).Plan(pts)
			require.NoError(t, err)
			assert.Equal(t, alg, res.Used)
			assert.Equal(t, 2, res.Diagnostics.ClusterCount)
			assert.Equal(t, 1, res.Tour.Boundaries())
			require.NoError(t, res.Tour.CheckPermutation(len(pts)))
		})
	}
}

func TestPlanEnhancedClusterFaultFallsBackToCluster(t *testing.T) {
	t.Parallel()

	pts := uniform(17, 60, 100)
	res, err := New(withAlgorithm(config.EnhancedCluster), WithClusterer(config.EnhancedCluster, panicClusterer{})).Plan(pts)
	require.NoError(t, err)
	assert.Equal(t, config.EnhancedCluster, res.Algorithm)
	assert.Equal(t, config.Cluster, res.Used)
	assert.Contains(t, res.Fallback, "clusterer exploded")
	assert.True(t, strings.Contains(res.Fallback, ErrStrategyFault.Error()))
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))
}

type panicScorer struct{}

func (panicScorer) Pick(heuristic.Move, []int) (int, float64) {
	panic("scorer exploded")
}

func TestPlanHeuristicFaultFallsBackToNearestNeighbor(t *testing.T) {
	t.Parallel()

	pts := uniform(9, 40, 100)
	opts := heuristic.DefaultOptions()
	opts.Scorer = panicScorer{}

	res, err := New(withAlgorithm(config.HeuristicSearch), WithHeuristicOptions(opts)).Plan(pts)
	require.NoError(t, err)
	assert.Equal(t, config.NearestNeighbor, res.Used)
	assert.Contains(t, res.Fallback, "scorer exploded")
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))

	// Nearest neighbour starts at the first input point.
	assert.Equal(t, 0, res.Tour.Indices()[0])
}

func TestExecuteWrapsStrategyFault(t *testing.T) {
	t.Parallel()

	opts := heuristic.DefaultOptions()
	opts.Scorer = panicScorer{}
	p := New(withAlgorithm(config.HeuristicSearch), WithHeuristicOptions(opts))
	r := &run{cfg: p.cfg, points: uniform(1, 20, 10), trace: monitoring.NewRecorder(), diag: &Diagnostics{}}

	_, err := p.execute(r, config.HeuristicSearch)
	assert.True(t, errors.Is(err, ErrStrategyFault))
}

func TestNearestNeighborOrder(t *testing.T) {
	t.Parallel()

	pts := []geom.Point{{X: 5}, {X: 0}, {X: 6}, {X: 20}, {X: 1}}
	r := &run{points: pts, trace: monitoring.NewRecorder(), diag: &Diagnostics{}}
	got := NearestNeighborOrder(pts, r.spatialIndex(), 0)
	if diff := cmp.Diff([]int{0, 2, 4, 1, 3}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, r.diag.IndexStats)
}

func TestPlanTwoOpt(t *testing.T) {
	t.Parallel()

	pts := uniform(21, 300, 1000)
	cfg := withAlgorithm(config.NearestNeighbor)
	plain, err := New(cfg).Plan(pts)
	require.NoError(t, err)

	cfg.TwoOptPasses = 3
	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	require.NotNil(t, res.Diagnostics.TwoOpt)
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))
	assert.LessOrEqual(t, res.Tour.Length(), plain.Tour.Length()+1e-6)
	assert.Equal(t, 0, res.Tour.Indices()[0])
}

func TestPlanHeuristicDiagnostics(t *testing.T) {
	t.Parallel()

	cfg := withAlgorithm(config.HeuristicSearch)
	cfg.Lookahead = true
	pts := uniform(17, 200, 300)

	res, err := New(cfg).Plan(pts)
	require.NoError(t, err)
	require.NotNil(t, res.Diagnostics.Heuristic)
	require.NotNil(t, res.Diagnostics.IndexStats)
	assert.Equal(t, config.HeuristicSearch, res.Used)
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))
}

func TestPlanRunID(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("7f6f3a52-2b4c-4d8e-9a0b-6c1d2e3f4a5b")
	res, err := New(config.DefaultPlanningConfig(), WithIDGenerator(func() uuid.UUID { return id })).Plan(uniform(2, 5, 10))
	require.NoError(t, err)
	assert.Equal(t, id, res.RunID)
	assert.Contains(t, res.Trace[0], id.String())
}

type blockingScorer struct {
	release chan struct{}
}

func (b blockingScorer) Pick(m heuristic.Move, c []int) (int, float64) {
	<-b.release
	return heuristic.TrendScorer{}.Pick(m, c)
}

func TestPlanDurationUsesClock(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.SetStep(3 * time.Millisecond)

	res, err := New(config.DefaultPlanningConfig(), WithClock(clock)).Plan(uniform(4, 20, 100))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, res.Diagnostics.Duration)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	opts := heuristic.DefaultOptions()
	opts.Scorer = blockingScorer{release: release}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, uniform(4, 50, 100), withAlgorithm(config.HeuristicSearch), WithHeuristicOptions(opts))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRunCompletes(t *testing.T) {
	t.Parallel()

	pts := uniform(6, 100, 100)
	res, err := Run(context.Background(), pts, withAlgorithm(config.EnhancedCluster))
	require.NoError(t, err)
	require.NoError(t, res.Tour.CheckPermutation(len(pts)))
	assert.Positive(t, res.Diagnostics.ClusterCount)
}
