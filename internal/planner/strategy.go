package planner

import (
	"fmt"

	"github.com/banshee-data/holepath/internal/cluster"
	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/heuristic"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/optimize"
	"github.com/banshee-data/holepath/internal/snake"
	"github.com/banshee-data/holepath/internal/spatial"
	"github.com/banshee-data/holepath/internal/spiral"
	"github.com/banshee-data/holepath/internal/tour"
)

// run carries the working state of one Plan call.
type run struct {
	cfg    config.PlanningConfig
	points []geom.Point
	trace  *monitoring.Recorder
	index  spatial.Options
	diag   *Diagnostics

	clusterers map[config.Algorithm]cluster.Clusterer
	idx        *spatial.Index
}

// spatialIndex builds the index on first use.
func (r *run) spatialIndex() *spatial.Index {
	if r.idx == nil {
		r.idx = spatial.Build(r.points, r.index)
		st := r.idx.Stats()
		r.diag.IndexStats = &st
		r.trace.Printf("index: grid %d, %d/%d cells used, %d subdivided, %.2f points per cell",
			r.idx.GridSize(), st.NonEmptyCells, st.TotalCells, st.Subdivisions, st.AvgOccupancy)
	}
	return r.idx
}

// clusterer returns the override for alg, or its default clusterer.
func (r *run) clusterer(alg config.Algorithm) cluster.Clusterer {
	if c, ok := r.clusterers[alg]; ok && c != nil {
		return c
	}
	if alg == config.EnhancedCluster {
		return cluster.AdaptiveClusterer{Index: r.spatialIndex(), Trace: r.trace}
	}
	return cluster.ConnectivityClusterer{Tolerance: r.cfg.ClusterTolerance}
}

func (r *run) strategy(alg config.Algorithm, hopts heuristic.Options) (tour.Tour, error) {
	switch alg {
	case config.Cluster:
		return r.clusterTour(), nil
	case config.EnhancedCluster:
		return r.enhancedClusterTour(), nil
	case config.SnakePath:
		return r.snakeTour(), nil
	case config.NearestNeighbor:
		return r.polish(NearestNeighborOrder(r.points, r.spatialIndex(), 0)), nil
	case config.SpiralFill:
		return r.spiralTour()
	case config.HeuristicSearch:
		return r.heuristicTour(hopts)
	}
	return nil, fmt.Errorf("%w: %d", config.ErrUnknownAlgorithm, int(alg))
}

func (r *run) clusterTour() tour.Tour {
	clusters := r.clusterer(config.Cluster).Cluster(r.points)
	if r.cfg.OptimizeTravel && len(clusters) > 1 {
		clusters = cluster.OrderByNearestNeighbor(clusters)
	} else {
		clusters = cluster.OrderByGrid(clusters)
	}
	r.diag.ClusterCount = len(clusters)
	r.trace.Printf("clusters: %d at tolerance %.3f", len(clusters), r.cfg.ClusterTolerance)

	return AssembleMultiRegion(r.points, clusters, func(c cluster.Cluster) []snake.Step {
		return snake.Path(r.points, c.Members, r.cfg.PointTolerance, r.cfg.StrictSnake)
	})
}

func (r *run) enhancedClusterTour() tour.Tour {
	clusters := r.clusterer(config.EnhancedCluster).Cluster(r.points)
	clusters = cluster.OrderByNearestNeighbor(clusters)
	r.diag.ClusterCount = len(clusters)
	r.trace.Printf("adaptive clusters: %d", len(clusters))

	return AssembleMultiRegion(r.points, clusters, func(c cluster.Cluster) []snake.Step {
		return snake.OptimizedPath(r.points, c.Members, r.cfg.PointTolerance)
	})
}

func (r *run) snakeTour() tour.Tour {
	members := make([]int, len(r.points))
	for i := range members {
		members[i] = i
	}
	r.diag.ClusterCount = 1
	return stepsTour(r.points, snake.Path(r.points, members, r.cfg.PointTolerance, r.cfg.StrictSnake))
}

func (r *run) spiralTour() (tour.Tour, error) {
	order, err := spiral.Project(r.points, spiral.Options{
		Center:          r.cfg.SpiralCenter,
		RadiusIncrement: r.cfg.SpiralRadiusIncrement,
		AngleStep:       r.cfg.SpiralAngleStep,
		StartRadius:     r.cfg.SpiralStartRadius,
	})
	if err != nil {
		return nil, err
	}
	return tour.FromIndices(r.points, order), nil
}

func (r *run) heuristicTour(opts heuristic.Options) (tour.Tour, error) {
	if r.cfg.Lookahead {
		opts.Scorer = heuristic.LookaheadScorer{}
	}
	res, err := heuristic.Build(r.points, r.spatialIndex(), opts, r.trace)
	if err != nil {
		return nil, err
	}
	r.diag.Heuristic = &res.Stats
	r.trace.Printf("heuristic: %d iterations, %d backtracks, %d forced, %d tail, %s",
		res.Stats.Iterations, res.Stats.Backtracks, res.Stats.ForcedPicks, res.Stats.TailPoints, res.Stats.Termination)
	return r.polish(res.Order), nil
}

// polish applies the optional 2-opt pass and builds the tour.
func (r *run) polish(order []int) tour.Tour {
	if r.cfg.TwoOptPasses > 0 {
		var st optimize.Stats
		order, st = optimize.Polish(r.points, order, r.cfg.TwoOptPasses)
		r.diag.TwoOpt = &st
		r.trace.Printf("2-opt: %d moves in %d passes, length %.3f -> %.3f", st.Moves, st.Passes, st.Before, st.After)
	}
	return tour.FromIndices(r.points, order)
}

// NearestNeighborOrder visits every point greedily, always moving to the
// closest unvisited one, starting at start.
func NearestNeighborOrder(points []geom.Point, idx *spatial.Index, start int) []int {
	n := len(points)
	if n == 0 {
		return []int{}
	}
	visited := spatial.NewMask(n)
	order := make([]int, 0, n)
	cur := start
	for {
		visited.Add(cur)
		order = append(order, cur)
		if len(order) == n {
			return order
		}
		cur = idx.NearestExcept(points[cur], visited)
		if cur < 0 {
			panic("planner: nearest-neighbour query found no unvisited point")
		}
	}
}
