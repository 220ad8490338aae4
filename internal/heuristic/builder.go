package heuristic

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/monitoring"
	"github.com/banshee-data/holepath/internal/spatial"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrIndexMismatch is returned when the index was not built over the points.
var ErrIndexMismatch = errors.New("heuristic: index does not cover the point set")

// Options tunes the search. Zero fields take the DefaultOptions value.
type Options struct {
	K0                float64 // base turn penalty coefficient
	HistoryWeight     float64 // weight of the previous trend when smoothing
	MaxBacktracks     int
	BacktrackSteps    int // points undone per backtrack
	BacktrackCooldown int // iterations between backtracks
	IterationFactor   int // iteration cap as a multiple of the point count
	MaxIterations     int // absolute iteration cap, overrides IterationFactor
	Scorer            Scorer
}

// DefaultOptions returns the tuned defaults with the TrendScorer.
func DefaultOptions() Options {
	return Options{
		K0:                0.3,
		HistoryWeight:     0.7,
		MaxBacktracks:     50,
		BacktrackSteps:    3,
		BacktrackCooldown: 5,
		IterationFactor:   2,
		Scorer:            TrendScorer{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.K0 <= 0 {
		o.K0 = d.K0
	}
	if o.HistoryWeight <= 0 || o.HistoryWeight >= 1 {
		o.HistoryWeight = d.HistoryWeight
	}
	if o.MaxBacktracks <= 0 {
		o.MaxBacktracks = d.MaxBacktracks
	}
	if o.BacktrackSteps <= 0 {
		o.BacktrackSteps = d.BacktrackSteps
	}
	if o.BacktrackCooldown <= 0 {
		o.BacktrackCooldown = d.BacktrackCooldown
	}
	if o.IterationFactor <= 0 {
		o.IterationFactor = d.IterationFactor
	}
	if o.Scorer == nil {
		o.Scorer = d.Scorer
	}
	return o
}

// Termination records why the main loop stopped.
type Termination string

const (
	TerminationComplete       Termination = "complete"
	TerminationBacktrackLimit Termination = "backtrack limit"
	TerminationIterationLimit Termination = "iteration limit"
)

// Stats summarises one Build run.
type Stats struct {
	Iterations    int         `json:"iterations"`
	Backtracks    int         `json:"backtracks"`
	ForcedPicks   int         `json:"forced_picks"`
	TailPoints    int         `json:"tail_points"`     // appended by the greedy tail
	NearReversals int         `json:"near_reversals"`  // accepted moves below ReversalDot
	TrendLambda   float64     `json:"trend_lambda"`    // final trend coefficient
	Termination   Termination `json:"termination"`
}

// Result is the visiting order and run statistics.
type Result struct {
	Order []int
	Stats Stats
}

// Build returns a tour over every point. idx must be built over points.
// The start is the lowest-X point (ties: lowest Y) and the second point is
// its nearest neighbour.
func Build(points []geom.Point, idx *spatial.Index, opts Options, trace monitoring.Sink) (Result, error) {
	n := len(points)
	if n == 0 {
		return Result{Stats: Stats{Termination: TerminationComplete}}, nil
	}
	if idx == nil || idx.Len() != n {
		return Result{}, ErrIndexMismatch
	}
	opts = opts.withDefaults()
	trace = monitoring.OrDiscard(trace)

	s := newSearch(points, idx, opts)
	st := idx.Stats()
	trace.Printf("index: %d cells, %d non-empty, %d subdivided, %.2f points per cell",
		st.TotalCells, st.NonEmptyCells, st.Subdivisions, st.AvgOccupancy)

	start := lowestPoint(points)
	s.push(start)
	trace.Printf("start point %d at (%.2f, %.2f)", start, points[start].X, points[start].Y)
	if n == 1 {
		return s.result(TerminationComplete), nil
	}
	s.push(idx.NearestExcept(points[start], s.visited))

	maxIterations := opts.IterationFactor * n
	if opts.MaxIterations > 0 {
		maxIterations = opts.MaxIterations
	}
	lastBacktrack := -opts.BacktrackCooldown
	for s.visited.Len() < n && s.stats.Backtracks < opts.MaxBacktracks && s.stats.Iterations < maxIterations {
		s.stats.Iterations++
		it := s.stats.Iterations

		cur := s.last()
		heading := s.heading()
		cands := idx.QueryNearest(points[cur], CandidateCount(n-s.visited.Len()), s.visited)

		pick, cost := -1, 0.0
		if len(cands) > 0 {
			pick, cost = opts.Scorer.Pick(s.move(cur, heading), cands)
		}
		if pick < 0 {
			pick = idx.NearestExcept(points[cur], s.visited)
			if pick < 0 {
				break
			}
			s.forced(pick, heading)
			continue
		}

		dot := r2.Dot(heading, geom.Direction(points[cur], points[pick]))
		if dot < ReversalDot && it-lastBacktrack >= opts.BacktrackCooldown && len(s.order) > 1 {
			undone := s.undo(opts.BacktrackSteps)
			s.k = 2 * opts.K0
			s.lambda = 0
			s.nonReversals = 0
			s.stats.Backtracks++
			lastBacktrack = it
			trace.Printf("backtrack %d at iteration %d: undid %d points", s.stats.Backtracks, it, undone)
			continue
		}

		s.accept(pick, heading, dot)
		if it%100 == 0 {
			monitoring.Tracef("heuristic iteration %d: point %d cost %.3f, %d remaining, trend lambda %.3f",
				it, pick, cost, n-s.visited.Len(), s.trendLambda)
		}
	}

	term := TerminationComplete
	switch {
	case s.visited.Len() == n:
	case s.stats.Backtracks >= opts.MaxBacktracks:
		term = TerminationBacktrackLimit
	default:
		term = TerminationIterationLimit
	}

	if left := n - s.visited.Len(); left > 0 {
		trace.Printf("%d points left after %s, completing with nearest neighbour", left, term)
		s.tail()
	}

	res := s.result(term)
	trace.Printf("heuristic done: %d points, %d iterations, %d backtracks, %d forced, %d tail, termination: %s",
		len(res.Order), res.Stats.Iterations, res.Stats.Backtracks, res.Stats.ForcedPicks, res.Stats.TailPoints, term)
	return res, nil
}

// lowestPoint returns the index with the lowest X, ties broken by lowest Y.
func lowestPoint(points []geom.Point) int {
	best := 0
	for i, p := range points {
		b := points[best]
		if p.X < b.X || (p.X == b.X && p.Y < b.Y) {
			best = i
		}
	}
	return best
}

// search is the mutable state of one Build call. order is append-only
// except through undo, which pops from the end and returns points to the
// unvisited pool.
type search struct {
	points  []geom.Point
	idx     *spatial.Index
	opts    Options
	order   []int
	visited *spatial.Mask

	k, lambda   float64
	trend       *geom.Point
	trendLambda float64

	consecutiveTurns int
	lastRight        bool
	nonReversals     int
	sameDirection    int

	stats Stats
}

func newSearch(points []geom.Point, idx *spatial.Index, opts Options) *search {
	return &search{
		points:      points,
		idx:         idx,
		opts:        opts,
		order:       make([]int, 0, len(points)),
		visited:     spatial.NewMask(len(points)),
		k:           opts.K0,
		lambda:      1,
		trendLambda: 1,
	}
}

func (s *search) push(i int) {
	s.order = append(s.order, i)
	s.visited.Add(i)
}

// undo pops up to n points, never the start, and reports how many it removed.
func (s *search) undo(n int) int {
	if n > len(s.order)-1 {
		n = len(s.order) - 1
	}
	for i := 0; i < n; i++ {
		last := s.order[len(s.order)-1]
		s.order = s.order[:len(s.order)-1]
		s.visited.Remove(last)
	}
	return n
}

func (s *search) last() int {
	return s.order[len(s.order)-1]
}

// heading is the unit direction of the last segment.
func (s *search) heading() geom.Point {
	if len(s.order) < 2 {
		return geom.DefaultHeading
	}
	return geom.Direction(s.points[s.order[len(s.order)-2]], s.points[s.last()])
}

func (s *search) move(cur int, heading geom.Point) Move {
	return Move{
		Points:      s.points,
		Current:     cur,
		Heading:     heading,
		K:           s.k,
		K0:          s.opts.K0,
		Lambda:      s.lambda,
		Trend:       s.trend,
		TrendLambda: s.trendLambda,
	}
}

// accept appends pick and updates turn, reversal and trend state.
func (s *search) accept(pick int, heading geom.Point, dot float64) {
	dir := geom.Direction(s.points[s.last()], s.points[pick])
	s.push(pick)
	if dot < ReversalDot {
		s.stats.NearReversals++
	}

	right := geom.IsRightTurn(heading, dir)
	if len(s.order) > 2 && right == s.lastRight {
		s.consecutiveTurns++
	} else {
		s.consecutiveTurns = 0
	}
	s.lastRight = right

	s.updateTrend(dir)

	if dot >= 0 {
		s.nonReversals++
		if s.nonReversals >= 3 {
			s.lambda = 0.5
		}
	} else {
		s.nonReversals = 0
		s.lambda = 2
	}
	s.k = s.opts.K0 * (1 + 0.1*float64(s.consecutiveTurns))
}

// updateTrend blends dir into the smoothed trend and adapts its coefficient:
// up 20% on a move against the trend, down 10% after five aligned moves.
func (s *search) updateTrend(dir geom.Point) {
	if s.trend == nil {
		t := dir
		s.trend = &t
		return
	}
	prev := *s.trend
	w := s.opts.HistoryWeight
	blended := r2.Add(r2.Scale(w, prev), r2.Scale(1-w, dir))
	if l := r2.Norm(blended); l > geom.MinDirectionLength {
		blended = r2.Scale(1/l, blended)
	}
	s.trend = &blended

	td := r2.Dot(prev, dir)
	switch {
	case td > 0.8:
		s.sameDirection++
	case td < -0.7:
		s.sameDirection = 0
		s.trendLambda *= 1.2
	default:
		s.sameDirection = 0
	}
	if s.sameDirection >= 5 {
		s.trendLambda *= 0.9
		s.sameDirection = 0
	}
	s.trendLambda = math.Max(0.5, math.Min(2.0, s.trendLambda))
}

// forced appends the globally nearest unvisited point when no candidate was
// offered, restoring the reversal penalty with a stiffer turn coefficient.
func (s *search) forced(pick int, heading geom.Point) {
	dot := r2.Dot(heading, geom.Direction(s.points[s.last()], s.points[pick]))
	s.push(pick)
	if dot < ReversalDot {
		s.stats.NearReversals++
	}
	s.stats.ForcedPicks++
	s.lambda = 1
	s.k = 1.5 * s.opts.K0
}

// tail completes the tour with plain nearest neighbour.
func (s *search) tail() {
	for s.visited.Len() < len(s.points) {
		cur := s.last()
		heading := s.heading()
		next := s.idx.NearestExcept(s.points[cur], s.visited)
		if next < 0 {
			panic(fmt.Sprintf("heuristic: no unvisited point with %d of %d visited", s.visited.Len(), len(s.points)))
		}
		if r2.Dot(heading, geom.Direction(s.points[cur], s.points[next])) < ReversalDot {
			s.stats.NearReversals++
		}
		s.push(next)
		s.stats.TailPoints++
	}
}

func (s *search) result(term Termination) Result {
	s.stats.Termination = term
	s.stats.TrendLambda = s.trendLambda
	return Result{Order: s.order, Stats: s.stats}
}
