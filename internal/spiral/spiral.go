package spiral

import (
	"errors"
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Constants for spiral sampling
const (
	MaxTurns = 100
	twoPi    = 2 * math.Pi
)

// ErrInvalidStep is returned when the radius increment or angle step is not
// strictly positive.
var ErrInvalidStep = errors.New("spiral: radius increment and angle step must be positive")

// Options controls sample generation. A nil Center means the centroid of the
// input.
type Options struct {
	Center          *geom.Point
	RadiusIncrement float64 // dr per full turn
	AngleStep       float64 // dθ in radians
	StartRadius     float64
}

type polar struct {
	index  int
	radius float64
	angle  float64
}

// Project returns a permutation of point indices in spiral order.
func Project(points []geom.Point, opts Options) ([]int, error) {
	if opts.RadiusIncrement <= 0 || opts.AngleStep <= 0 {
		return nil, ErrInvalidStep
	}
	if len(points) == 0 {
		return []int{}, nil
	}

	center := geom.Centroid(points, nil)
	if opts.Center != nil {
		center = *opts.Center
	}

	pts := toPolar(points, center)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].angle < pts[j].angle })

	radii := make([]float64, len(pts))
	for i, p := range pts {
		radii[i] = p.radius
	}
	limit := floats.Max(radii) + opts.RadiusIncrement

	used := make([]bool, len(pts))
	order := make([]int, 0, len(pts))
	prev := math.Inf(-1)
	for i := 0; len(order) < len(pts); i++ {
		theta := float64(i) * opts.AngleStep
		if theta >= MaxTurns*twoPi || prev > limit {
			break
		}
		r := opts.StartRadius + opts.RadiusIncrement*theta/twoPi
		if j := nearest(pts, used, r, theta); j >= 0 {
			used[j] = true
			order = append(order, pts[j].index)
		}
		prev = r
	}

	if len(order) == len(pts) {
		return order, nil
	}
	return appendLeftovers(order, pts, used), nil
}

func toPolar(points []geom.Point, center geom.Point) []polar {
	out := make([]polar, len(points))
	for i, p := range points {
		d := r2.Sub(p, center)
		a := math.Atan2(d.Y, d.X)
		if a < 0 {
			a += twoPi
		}
		out[i] = polar{index: i, radius: math.Hypot(d.X, d.Y), angle: a}
	}
	return out
}

// nearest returns the position in pts of the unused point closest to the
// sample at (r, theta), or -1 when everything is used. Ties keep the earlier
// point in angle order.
func nearest(pts []polar, used []bool, r, theta float64) int {
	best := -1
	bestDist := math.Inf(1)
	for j, p := range pts {
		if used[j] {
			continue
		}
		dr := p.radius - r
		da := wrapAngle(p.angle - theta)
		dist := math.Sqrt(dr*dr + r*r*da*da)
		if dist < bestDist {
			bestDist = dist
			best = j
		}
	}
	return best
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Remainder(a, twoPi)
	if a <= -math.Pi {
		a += twoPi
	}
	return a
}

func appendLeftovers(order []int, pts []polar, used []bool) []int {
	rest := make([]polar, 0, len(pts)-len(order))
	for j, p := range pts {
		if !used[j] {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].radius != rest[j].radius {
			return rest[i].radius < rest[j].radius
		}
		return rest[i].angle < rest[j].angle
	})
	for _, p := range rest {
		order = append(order, p.index)
	}
	return order
}
