// Package cluster partitions a point set into spatially coherent groups and
// orders those groups for processing.
//
// Responsibilities:
//   - Connectivity: connected components of the "distance <= tolerance" graph
//   - Auto: density-adaptive components with a per-seed tolerance, followed
//     by MergeSmall
//   - OrderByGrid / OrderByNearestNeighbor: cluster visiting order
//
// Key types: Cluster, Clusterer.
//
// Dependency rule: cluster depends on geom, spatial and monitoring. Members are
// indices into the caller's point slice; clusters never copy points.
package cluster
