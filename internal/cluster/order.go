package cluster

import (
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
)

// CenterTieTolerance is the Y difference under which two cluster centres are
// considered level when picking the starting cluster.
const CenterTieTolerance = 0.001

// OrderByGrid returns clusters sorted by bounding-box centre Y, then X.
func OrderByGrid(clusters []Cluster) []Cluster {
	out := make([]Cluster, len(clusters))
	copy(out, clusters)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Center(), out[j].Center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})
	return out
}

// OrderByNearestNeighbor chains clusters greedily by bounding-box centre
// distance, starting from the lowest (then leftmost) centre.
func OrderByNearestNeighbor(clusters []Cluster) []Cluster {
	if len(clusters) <= 1 {
		return clusters
	}

	centers := make([]geom.Point, len(clusters))
	for i, c := range clusters {
		centers[i] = c.Center()
	}

	start := 0
	for i := 1; i < len(centers); i++ {
		if centers[i].Y < centers[start].Y ||
			(math.Abs(centers[i].Y-centers[start].Y) < CenterTieTolerance && centers[i].X < centers[start].X) {
			start = i
		}
	}

	used := make([]bool, len(clusters))
	out := make([]Cluster, 0, len(clusters))
	cur := start
	for {
		used[cur] = true
		out = append(out, clusters[cur])

		next := -1
		best := math.Inf(1)
		for i := range clusters {
			if used[i] {
				continue
			}
			if d := geom.Distance(centers[cur], centers[i]); d < best {
				next, best = i, d
			}
		}
		if next < 0 {
			return out
		}
		cur = next
	}
}
