package cluster

import (
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/spatial"
)

// MinClusterPoints is the population below which clustering is skipped and
// every point lands in a single cluster.
const MinClusterPoints = 10

// Cluster is a group of point indices with derived geometry.
type Cluster struct {
	Members  []int
	Centroid geom.Point // mean of member positions
	Bounds   geom.Rect
}

// New builds a Cluster over members and computes its geometry.
func New(points []geom.Point, members []int) Cluster {
	return Cluster{
		Members:  members,
		Centroid: geom.Centroid(points, members),
		Bounds:   geom.Bounds(points, members),
	}
}

// Len returns the number of members.
func (c Cluster) Len() int {
	return len(c.Members)
}

// Center returns the midpoint of the bounding box, used for ordering.
func (c Cluster) Center() geom.Point {
	return geom.Center(c.Bounds)
}

// single returns the whole point set as one cluster, or nil for no points.
func single(points []geom.Point) []Cluster {
	if len(points) == 0 {
		return nil
	}
	members := make([]int, len(points))
	for i := range members {
		members[i] = i
	}
	return []Cluster{New(points, members)}
}

// Clusterer abstracts the clustering implementation so the planner can swap
// algorithms without changing how clusters are ordered and walked.
type Clusterer interface {
	// Cluster partitions points. Every index appears in exactly one cluster.
	Cluster(points []geom.Point) []Cluster
}

// ConnectivityClusterer groups points by fixed-tolerance connectivity.
type ConnectivityClusterer struct {
	Tolerance float64
}

// Cluster implements Clusterer.
func (c ConnectivityClusterer) Cluster(points []geom.Point) []Cluster {
	return Connectivity(points, c.Tolerance)
}

// AdaptiveClusterer groups points with a per-seed tolerance derived from
// local density. Index may be nil, in which case one is built per call.
type AdaptiveClusterer struct {
	Index *spatial.Index
	Trace monitoring.Sink
}

// Cluster implements Clusterer.
func (c AdaptiveClusterer) Cluster(points []geom.Point) []Cluster {
	idx := c.Index
	if idx == nil || idx.Len() != len(points) {
		idx = spatial.Build(points, spatial.Options{})
	}
	return Auto(points, idx, c.Trace)
}
