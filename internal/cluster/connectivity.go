package cluster

import (
	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/spatial"
)

// Connectivity returns the connected components of the graph joining points
// at most tolerance apart. Seeds are taken in input order and each component
// is expanded breadth-first, so members are listed in discovery order.
//
// Fewer than MinClusterPoints points, or a non-positive tolerance, yields a
// single cluster of every point.
func Connectivity(points []geom.Point, tolerance float64) []Cluster {
	if len(points) < MinClusterPoints || tolerance <= 0 {
		return single(points)
	}

	ri := spatial.NewRadiusIndex(points, tolerance)
	visited := spatial.NewMask(len(points))

	var clusters []Cluster
	for seed := range points {
		if visited.Has(seed) {
			continue
		}
		members := expand(seed, visited, func(i int) []int {
			return ri.Within(i, tolerance, visited)
		})
		clusters = append(clusters, New(points, members))
	}
	return clusters
}

// expand runs a FIFO flood fill from seed. neighbors must only return
// indices not yet in visited.
func expand(seed int, visited *spatial.Mask, neighbors func(int) []int) []int {
	visited.Add(seed)
	queue := []int{seed}

	// Use a queue-based approach for expansion
	for j := 0; j < len(queue); j++ {
		for _, n := range neighbors(queue[j]) {
			if visited.Add(n) {
				queue = append(queue, n)
			}
		}
	}
	return queue
}
