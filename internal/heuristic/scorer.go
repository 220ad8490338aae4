package heuristic

import (
	"math"

	"github.com/banshee-data/holepath/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Scorer picks the next point from a candidate list.
// Pick returns the chosen candidate and its cost, or -1 when it declines.
type Scorer interface {
	Pick(m Move, candidates []int) (int, float64)
}

// TrendScorer picks the lowest-cost candidate, skipping near reversals
// unless nothing else is on offer. If every candidate is a near reversal it
// falls back to the nearest one.
type TrendScorer struct{}

// Pick implements Scorer.
func (TrendScorer) Pick(m Move, candidates []int) (int, float64) {
	best, bestCost := -1, math.Inf(1)
	for _, c := range candidates {
		if len(candidates) > 1 && m.Dot(c) < ReversalDot {
			continue
		}
		if cost := m.Cost(c); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	if best >= 0 {
		return best, bestCost
	}

	nearest, nd := -1, math.Inf(1)
	for _, c := range candidates {
		if d := geom.Distance2(m.Points[m.Current], m.Points[c]); d < nd {
			nearest, nd = c, d
		}
	}
	if nearest < 0 {
		return -1, 0
	}
	return nearest, m.Cost(nearest)
}

// Lookahead weights and bonuses
const (
	LookaheadWeight     = 0.7
	ConsistentBonus     = 0.9
	AvoidReversalsBonus = 0.8
)

// LookaheadScorer evaluates each candidate together with its best follow-up
// move: cost1 + 0.7*cost2, discounted when both moves keep heading forward
// and when neither is a near reversal.
type LookaheadScorer struct{}

// Pick implements Scorer.
func (LookaheadScorer) Pick(m Move, candidates []int) (int, float64) {
	if len(candidates) < 2 {
		return TrendScorer{}.Pick(m, candidates)
	}

	best, bestTotal, bestCost := -1, math.Inf(1), 0.0
	for _, c1 := range candidates {
		cost1 := m.Cost(c1)
		dir1 := geom.Direction(m.Points[m.Current], m.Points[c1])

		c2, cost2 := -1, math.Inf(1)
		for _, c := range candidates {
			if c == c1 {
				continue
			}
			if cost := m.CostFrom(c1, dir1, c); cost < cost2 {
				c2, cost2 = c, cost
			}
		}
		if c2 < 0 {
			continue
		}
		dir2 := geom.Direction(m.Points[c1], m.Points[c2])

		total := cost1 + LookaheadWeight*cost2
		dot1, dot2 := r2.Dot(m.Heading, dir1), r2.Dot(dir1, dir2)
		if dot1 > 0 && dot2 > 0 {
			total *= ConsistentBonus
		}
		if dot1 >= ReversalDot && dot2 >= ReversalDot {
			total *= AvoidReversalsBonus
		}
		if total < bestTotal {
			best, bestTotal, bestCost = c1, total, cost1
		}
	}
	if best < 0 {
		return TrendScorer{}.Pick(m, candidates)
	}
	return best, bestCost
}
