package heuristic

import (
	"math"

	"github.com/banshee-data/holepath/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// ReversalDot is the heading alignment below which a move counts as a near
// reversal, within about 18 degrees of straight back.
const ReversalDot = -0.95

// sharpDot and severeDot select the 135 and 170 degree penalty tiers.
var (
	sharpDot  = math.Cos(135 * math.Pi / 180)
	severeDot = math.Cos(170 * math.Pi / 180)
)

// Constants for the trend penalty
const (
	// TrendOpposeDot is the trend alignment below which a move is treated as
	// fighting the trend (about 107 degrees).
	TrendOpposeDot = -0.3
	// TrendMildScale scales the penalty for moves that do not oppose the trend.
	TrendMildScale = 0.1
	// TrendDistanceCap caps the opposing-trend penalty relative to the move length.
	TrendDistanceCap = 0.5
)

// Move is the decision point handed to a Scorer: the current point, its
// heading and the adaptive coefficients in force.
type Move struct {
	Points      []geom.Point
	Current     int
	Heading     geom.Point // unit heading of the last segment
	K           float64    // turn penalty coefficient
	K0          float64    // base turn coefficient, sets the reversal tiers
	Lambda      float64    // reversal penalty multiplier
	Trend       *geom.Point
	TrendLambda float64
}

// Cost scores the move from Current to candidate.
func (m Move) Cost(candidate int) float64 {
	return m.CostFrom(m.Current, m.Heading, candidate)
}

// Dot returns the alignment of the move to candidate with the heading.
func (m Move) Dot(candidate int) float64 {
	return r2.Dot(m.Heading, geom.Direction(m.Points[m.Current], m.Points[candidate]))
}

// CostFrom scores the move from one point to another under heading:
// distance + K*|turn| + reversal penalty + trend penalty.
func (m Move) CostFrom(from int, heading geom.Point, to int) float64 {
	p, q := m.Points[from], m.Points[to]
	d := geom.Distance(p, q)
	dir := geom.Direction(p, q)
	dot := r2.Dot(heading, dir)

	cost := d + m.K*geom.TurnAngle(heading, dir) + DirectionPenalty(dot, m.Lambda, m.K0)
	if m.Trend != nil {
		cost += TrendPenalty(r2.Dot(*m.Trend, dir), d, m.TrendLambda)
	}
	return cost
}

// DirectionPenalty is zero for moves that do not turn back (dot >= 0) and
// lambda*M*(1+dot) otherwise, with M rising from 10*k0 to 50*k0 past 135
// degrees and 100*k0 past 170 degrees.
func DirectionPenalty(dot, lambda, k0 float64) float64 {
	if dot >= 0 {
		return 0
	}
	m := 10 * k0
	switch {
	case dot < severeDot:
		m = 100 * k0
	case dot < sharpDot:
		m = 50 * k0
	}
	return lambda * m * (1 + dot)
}

// TrendPenalty charges a move of length d whose alignment with the smoothed
// trend is trendDot. Moves opposing the trend pay tau*(1-cos), capped at
// half their length; the rest pay a tenth of that.
func TrendPenalty(trendDot, d, tau float64) float64 {
	c := math.Max(-1, math.Min(1, trendDot))
	if c < TrendOpposeDot {
		return math.Min(TrendDistanceCap*d, tau*(1-c))
	}
	return TrendMildScale * tau * (1 - c)
}

// CandidateCount returns how many nearest unvisited points to score when
// remaining points are left.
func CandidateCount(remaining int) int {
	c := 50
	switch {
	case remaining > 10000:
		c = 30
	case remaining > 1000:
		c = 40
	case remaining < 100:
		c = 20
	}
	if c > remaining {
		c = remaining
	}
	return c
}
