package cluster

import (
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/spatial"
)

// Constants for density-adaptive clustering
const (
	// DensitySample is the neighbourhood size used to estimate local spacing.
	DensitySample = 20
	// ExpansionCandidates is the number of nearest unvisited points examined
	// when growing a cluster.
	ExpansionCandidates = 50
	// DeltaScale converts the median neighbour distance into a base delta.
	DeltaScale = 2.5
	// IsolatedNeighbors is the neighbourhood size at or below which a seed is
	// treated as isolated.
	IsolatedNeighbors = 3
	// IsolatedScale multiplies the base delta for isolated seeds.
	IsolatedScale = 1.2
	// DeltaFloor is the smallest delta produced before the average cap.
	DeltaFloor = 200.0
	// MinDeltaScale and MaxDeltaScale bound the density-scaled delta relative
	// to the base delta.
	MinDeltaScale = 0.3
	MaxDeltaScale = 1.8
	// MaxDensityFactor caps the density adjustment for sparse neighbourhoods.
	MaxDensityFactor = 2.0
	// AverageCapScale caps delta relative to the mean nearest-neighbour distance.
	AverageCapScale = 0.8
)

// Auto clusters points with a tolerance derived per seed from local density,
// then folds undersized clusters into their neighbours with MergeSmall.
// idx must be built over points. Progress lines go to trace when non-nil.
func Auto(points []geom.Point, idx *spatial.Index, trace monitoring.Sink) []Cluster {
	if len(points) < MinClusterPoints {
		return single(points)
	}
	trace = monitoring.OrDiscard(trace)

	avg := idx.AverageNearestNeighbor(spatial.AverageDistanceSample)
	trace.Printf("average nearest-neighbour distance: %.2f", avg)

	visited := spatial.NewMask(len(points))
	var clusters []Cluster
	for seed := range points {
		if visited.Has(seed) {
			continue
		}
		delta := AdaptiveDelta(points, idx, seed, avg)
		members := expand(seed, visited, func(i int) []int {
			var out []int
			for _, c := range idx.QueryNearest(points[i], ExpansionCandidates, visited) {
				if geom.Distance(points[i], points[c]) <= delta {
					out = append(out, c)
				}
			}
			return out
		})
		clusters = append(clusters, New(points, members))
		trace.Printf("cluster %d: %d points, delta=%.2f", len(clusters), len(members), delta)
	}

	trace.Printf("initial clustering: %d clusters, merging small clusters", len(clusters))
	merged := MergeSmall(points, clusters, avg, trace)
	trace.Printf("after merge: %d clusters", len(merged))
	return merged
}

// AdaptiveDelta returns the expansion tolerance for seed given the mean
// nearest-neighbour distance avg of the whole set.
func AdaptiveDelta(points []geom.Point, idx *spatial.Index, seed int, avg float64) float64 {
	p := points[seed]
	near := idx.QueryNearest(p, DensitySample, nil)

	dists := make([]float64, 0, len(near))
	for _, id := range near {
		if id == seed {
			continue
		}
		if d := geom.Distance(p, points[id]); d > geom.MinDirectionLength {
			dists = append(dists, d)
		}
	}

	median := avg * 0.1
	if len(dists) > 0 {
		sort.Float64s(dists)
		// Upper middle element for even counts.
		median = dists[len(dists)/2]
	}
	base := median * DeltaScale

	if len(near) <= IsolatedNeighbors {
		return math.Max(IsolatedScale*base, DeltaFloor)
	}

	density := math.Min(MaxDensityFactor, DensitySample/float64(len(near)))
	delta := base * density
	delta = math.Max(MinDeltaScale*base, delta)
	delta = math.Min(MaxDeltaScale*base, delta)

	delta = math.Max(DeltaFloor, delta)
	delta = math.Min(AverageCapScale*avg, delta)
	return delta
}
