package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// MinDirectionLength is the segment length below which a heading is undefined.
// Direction returns DefaultHeading for such segments.
const MinDirectionLength = 0.001

// DefaultHeading is used when two points coincide.
var DefaultHeading = Point{X: 0, Y: 1}

// ErrNonFinite is returned by Validate for NaN or infinite coordinates.
var ErrNonFinite = errors.New("geom: non-finite coordinate")

// Point is a 2D position in drawing units.
type Point = r2.Vec

// Rect is an axis-aligned bounding box.
type Rect = r2.Box

// Validate rejects point sets containing NaN or infinite coordinates.
func Validate(points []Point) error {
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("point %d (%v, %v): %w", i, p.X, p.Y, ErrNonFinite)
		}
	}
	return nil
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// Distance2 returns the squared Euclidean distance between a and b.
func Distance2(a, b Point) float64 {
	return r2.Norm2(r2.Sub(b, a))
}

// Direction returns the unit vector from a to b.
func Direction(from, to Point) Point {
	d := r2.Sub(to, from)
	l := r2.Norm(d)
	if l < MinDirectionLength {
		return DefaultHeading
	}
	return r2.Scale(1/l, d)
}

// TurnAngle returns the unsigned angle in radians between two unit headings.
func TurnAngle(a, b Point) float64 {
	return math.Acos(clampUnit(r2.Dot(a, b)))
}

// IsRightTurn reports whether heading b turns clockwise from heading a.
func IsRightTurn(a, b Point) bool {
	return r2.Cross(a, b) < 0
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Bounds returns the bounding box of the given members of points.
// A nil members slice means every point.
func Bounds(points []Point, members []int) Rect {
	n := count(points, members)
	if n == 0 {
		return Rect{}
	}
	first := at(points, members, 0)
	r := Rect{Min: first, Max: first}
	for i := 1; i < n; i++ {
		p := at(points, members, i)
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Center returns the midpoint of r.
func Center(r Rect) Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Centroid returns the mean position of the given members of points.
// A nil members slice means every point. The centroid of nothing is the origin.
func Centroid(points []Point, members []int) Point {
	n := count(points, members)
	if n == 0 {
		return Point{}
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		p := at(points, members, i)
		xs[i], ys[i] = p.X, p.Y
	}
	return Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// Rotate returns a copy of points rotated counter-clockwise about the origin.
// Angles within a thousandth of a degree of zero leave the points untouched.
func Rotate(points []Point, degrees float64) []Point {
	out := make([]Point, len(points))
	if math.Abs(degrees) <= 0.001 {
		copy(out, points)
		return out
	}
	rad := degrees * math.Pi / 180.0
	for i, p := range points {
		out[i] = r2.Rotate(p, rad, Point{})
	}
	return out
}

// Centered returns a copy of points translated so their centroid is the origin.
func Centered(points []Point) []Point {
	c := Centroid(points, nil)
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = r2.Sub(p, c)
	}
	return out
}

func count(points []Point, members []int) int {
	if members == nil {
		return len(points)
	}
	return len(members)
}

func at(points []Point, members []int, i int) Point {
	if members == nil {
		return points[i]
	}
	return points[members[i]]
}
