package planner

import (
	"github.com/banshee-data/holepath/internal/cluster"
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/snake"
	"github.com/banshee-data/holepath/internal/tour"
)

// AssembleMultiRegion stitches per-cluster paths into one tour in cluster
// order. Each path after the first is entered at whichever end lies closer to
// the previous path's last point, reversing it when needed. Consecutive
// clusters are separated by a GroupBoundary.
func AssembleMultiRegion(points []geom.Point, clusters []cluster.Cluster, path func(cluster.Cluster) []snake.Step) tour.Tour {
	out := make(tour.Tour, 0, len(points)+len(clusters))
	var last *geom.Point
	for _, c := range clusters {
		steps := path(c)
		if len(steps) == 0 {
			continue
		}
		if last != nil {
			first, end := points[steps[0].Index], points[steps[len(steps)-1].Index]
			if geom.Distance(*last, first) > geom.Distance(*last, end) {
				steps = snake.Reverse(steps)
			}
			out = append(out, tour.GroupBoundary{})
		}
		out = append(out, stepsTour(points, steps)...)
		p := points[steps[len(steps)-1].Index]
		last = &p
	}
	return out
}

func stepsTour(points []geom.Point, steps []snake.Step) tour.Tour {
	t := make(tour.Tour, len(steps))
	for i, s := range steps {
		t[i] = tour.PointVisit{Point: points[s.Index], Index: s.Index, Connector: s.Connector}
	}
	return t
}
