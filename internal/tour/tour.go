// Package tour defines the planner's output: an ordered sequence of
// waypoints, plus metrics and the JSON wire form.
package tour

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/holepath/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNotPermutation is returned by CheckPermutation when the visits of a tour
// do not cover the input exactly once.
var ErrNotPermutation = errors.New("tour: visits are not a permutation of the input")

// Waypoint is one entry of a Tour: either a PointVisit or a GroupBoundary.
type Waypoint interface {
	waypoint()
}

// PointVisit moves the head to Point, the input point at Index.
// Connector marks a duplicate visit inserted between snake rows.
type PointVisit struct {
	Point     geom.Point
	Index     int
	Connector bool
}

// GroupBoundary separates clusters: the tool lifts before the next visit.
type GroupBoundary struct{}

func (PointVisit) waypoint()    {}
func (GroupBoundary) waypoint() {}

// Tour is an ordered machining sequence.
type Tour []Waypoint

// FromIndices builds a tour visiting points in the given order.
func FromIndices(points []geom.Point, order []int) Tour {
	t := make(Tour, len(order))
	for i, id := range order {
		t[i] = PointVisit{Point: points[id], Index: id}
	}
	return t
}

// Visits returns every PointVisit, connectors included.
func (t Tour) Visits() []PointVisit {
	out := make([]PointVisit, 0, len(t))
	for _, w := range t {
		if v, ok := w.(PointVisit); ok {
			out = append(out, v)
		}
	}
	return out
}

// Points returns the position of every visit, connectors included.
func (t Tour) Points() []geom.Point {
	visits := t.Visits()
	out := make([]geom.Point, len(visits))
	for i, v := range visits {
		out[i] = v.Point
	}
	return out
}

// Indices returns the input index of every non-connector visit.
func (t Tour) Indices() []int {
	out := make([]int, 0, len(t))
	for _, v := range t.Visits() {
		if !v.Connector {
			out = append(out, v.Index)
		}
	}
	return out
}

// Boundaries returns the number of GroupBoundary waypoints.
func (t Tour) Boundaries() int {
	n := 0
	for _, w := range t {
		if _, ok := w.(GroupBoundary); ok {
			n++
		}
	}
	return n
}

// Connectors returns the number of connector visits.
func (t Tour) Connectors() int {
	n := 0
	for _, v := range t.Visits() {
		if v.Connector {
			n++
		}
	}
	return n
}

// Length returns the travel distance between consecutive visits. Moves
// across a group boundary are included.
func (t Tour) Length() float64 {
	pts := t.Points()
	var total float64
	for i := 1; i < len(pts); i++ {
		total += geom.Distance(pts[i-1], pts[i])
	}
	return total
}

// Turns returns the turn angle in radians at every interior visit.
// Zero-length moves do not define a heading and are skipped.
func (t Tour) Turns() []float64 {
	pts := t.Points()
	var headings []geom.Point
	for i := 1; i < len(pts); i++ {
		d := r2.Sub(pts[i], pts[i-1])
		if r2.Norm(d) < geom.MinDirectionLength {
			continue
		}
		headings = append(headings, r2.Unit(d))
	}
	var out []float64
	for i := 1; i < len(headings); i++ {
		out = append(out, geom.TurnAngle(headings[i-1], headings[i]))
	}
	return out
}

// Reversals returns the number of turns sharper than 90 degrees.
func (t Tour) Reversals() int {
	n := 0
	for _, a := range t.Turns() {
		if a > math.Pi/2 {
			n++
		}
	}
	return n
}

// NearReversals returns the number of turns within tolerance radians of a
// full 180 degree reversal.
func (t Tour) NearReversals(tolerance float64) int {
	n := 0
	for _, a := range t.Turns() {
		if math.Pi-a < tolerance {
			n++
		}
	}
	return n
}

// CheckPermutation verifies that the non-connector visits cover every index
// in [0, n) exactly once and that connectors reference valid indices.
func (t Tour) CheckPermutation(n int) error {
	seen := make([]bool, n)
	count := 0
	for pos, v := range t.Visits() {
		if v.Index < 0 || v.Index >= n {
			return fmt.Errorf("visit %d index %d out of range [0, %d): %w", pos, v.Index, n, ErrNotPermutation)
		}
		if v.Connector {
			continue
		}
		if seen[v.Index] {
			return fmt.Errorf("index %d visited twice: %w", v.Index, ErrNotPermutation)
		}
		seen[v.Index] = true
		count++
	}
	if count != n {
		return fmt.Errorf("%d of %d points visited: %w", count, n, ErrNotPermutation)
	}
	return nil
}
