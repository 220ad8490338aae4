package cluster

import (
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/monitoring"
)

// Constants for the small-cluster merge pass
const (
	// SmallClusterSize is the population below which a cluster is merged away.
	SmallClusterSize = 5
	// MainPathSize is the population at which a cluster absorbs neighbours.
	MainPathSize = 20
	// MergeRadiusScale converts the average spacing into the merge radius.
	MergeRadiusScale = 0.5
	// AbsorbRadiusScale widens the merge radius for main-path absorption.
	AbsorbRadiusScale = 1.5
)

type group struct {
	members  []int
	centroid geom.Point
}

func (g *group) absorb(o *group) {
	n, m := float64(len(g.members)), float64(len(o.members))
	g.centroid = geom.Point{
		X: (g.centroid.X*n + o.centroid.X*m) / (n + m),
		Y: (g.centroid.Y*n + o.centroid.Y*m) / (n + m),
	}
	g.members = append(g.members, o.members...)
	o.members = nil
}

// MergeSmall folds clusters of fewer than SmallClusterSize members into the
// nearest cluster whose centroid lies within MergeRadiusScale*avgDistance,
// preferring clusters that are not small. A second pass lets clusters of at
// least MainPathSize members absorb any cluster within AbsorbRadiusScale
// times that radius. Main paths come first in the result.
func MergeSmall(points []geom.Point, clusters []Cluster, avgDistance float64, trace monitoring.Sink) []Cluster {
	trace = monitoring.OrDiscard(trace)
	radius := avgDistance * MergeRadiusScale

	groups := make([]*group, len(clusters))
	var small []int
	for i, c := range clusters {
		members := make([]int, len(c.Members))
		copy(members, c.Members)
		groups[i] = &group{members: members, centroid: c.Centroid}
		if len(members) < SmallClusterSize {
			small = append(small, i)
		}
	}
	trace.Printf("large clusters: %d, small clusters: %d", len(clusters)-len(small), len(small))

	for _, s := range small {
		g := groups[s]
		if len(g.members) == 0 || len(g.members) >= SmallClusterSize {
			continue
		}
		target := nearestGroup(groups, s, radius, func(o *group) bool {
			return len(o.members) >= SmallClusterSize
		})
		if target < 0 {
			target = nearestGroup(groups, s, radius, func(o *group) bool {
				return len(o.members) < SmallClusterSize
			})
		}
		if target < 0 {
			continue
		}
		trace.Printf("small cluster (%d points) merged at distance %.1f",
			len(g.members), geom.Distance(g.centroid, groups[target].centroid))
		groups[target].absorb(g)
	}

	var mains, rest []*group
	for _, g := range groups {
		switch {
		case len(g.members) == 0:
		case len(g.members) >= MainPathSize:
			mains = append(mains, g)
		default:
			rest = append(rest, g)
		}
	}
	trace.Printf("main paths: %d, remaining clusters: %d", len(mains), len(rest))

	absorbRadius := radius * AbsorbRadiusScale
	for _, m := range mains {
		center := m.centroid
		kept := rest[:0]
		for _, r := range rest {
			if geom.Distance(center, r.centroid) <= absorbRadius {
				trace.Printf("main path absorbed %d points", len(r.members))
				m.absorb(r)
				continue
			}
			kept = append(kept, r)
		}
		rest = kept
	}

	out := make([]Cluster, 0, len(mains)+len(rest))
	for _, g := range append(mains, rest...) {
		out = append(out, New(points, g.members))
	}
	return out
}

// nearestGroup returns the index of the non-empty group nearest to groups[from]
// by centroid within radius that satisfies accept, or -1.
func nearestGroup(groups []*group, from int, radius float64, accept func(*group) bool) int {
	best := -1
	bestDist := radius
	for i, o := range groups {
		if i == from || len(o.members) == 0 || !accept(o) {
			continue
		}
		d := geom.Distance(groups[from].centroid, o.centroid)
		if d <= bestDist && (best < 0 || d < bestDist) {
			best, bestDist = i, d
		}
	}
	return best
}
