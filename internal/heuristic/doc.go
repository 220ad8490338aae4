// Package heuristic builds a single global tour point by point, scoring
// nearby candidates by distance, turn angle, reversal and trend penalties.
//
// Responsibilities:
//   - candidate selection from a spatial.Index around the current point
//   - cost scoring through a pluggable Scorer (TrendScorer by default,
//     LookaheadScorer optionally)
//   - bounded backtracking when the best move is a near reversal
//   - a greedy nearest-neighbour tail once the iteration or backtrack caps
//     are reached, so every call returns a complete permutation
//
// Key types: Options, Move, Scorer, Result, Stats.
//
// Dependency rule: heuristic depends on geom, spatial and monitoring only.
package heuristic
