// Package planner turns a point set and a PlanningConfig into a Tour.
//
// Plan validates its input, applies the optional centring and rotation, runs
// the selected strategy and downgrades strategy faults to a fallback
// strategy so that every run produces a complete tour:
//
//	HeuristicSearch -> NearestNeighbor
//	SpiralFill      -> Cluster
//	EnhancedCluster -> Cluster
//
// Tour coordinates are in the transformed (centred, rotated) frame. Every
// PointVisit keeps the index of the source point it came from.
package planner
