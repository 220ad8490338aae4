package optimize

import (
	"github.com/banshee-data/holepath/internal/geom"
)

// Eps is the smallest length reduction accepted as an improvement.
const Eps = 1e-9

// Stats describes one Polish run.
type Stats struct {
	Passes int     `json:"passes"`
	Moves  int     `json:"moves"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Polish runs up to passes first-improvement 2-opt scans over order and
// returns the improved copy. The scan stops early on the first pass that finds
// nothing. Order must index into points; the input slice is not modified.
func Polish(points []geom.Point, order []int, passes int) ([]int, Stats) {
	cur := make([]int, len(order))
	copy(cur, order)

	stats := Stats{Before: Length(points, cur)}
	stats.After = stats.Before
	n := len(cur)
	if n < 4 || passes <= 0 {
		return cur, stats
	}

	at := func(u, v int) float64 { return geom.Distance(points[u], points[v]) }

	for stats.Passes < passes {
		stats.Passes++
		improved := false
		for i := 1; i <= n-2; i++ {
			for k := i + 1; k <= n-1; k++ {
				a, b, c := cur[i-1], cur[i], cur[k]
				delta := at(a, c) - at(a, b)
				if k < n-1 {
					d := cur[k+1]
					delta += at(b, d) - at(c, d)
				}
				if delta < -Eps {
					reverse(cur, i, k)
					stats.After += delta
					stats.Moves++
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	stats.After = Length(points, cur)
	return cur, stats
}

// Length is the open path length of order.
func Length(points []geom.Point, order []int) float64 {
	var total float64
	for i := 1; i < len(order); i++ {
		total += geom.Distance(points[order[i-1]], points[order[i]])
	}
	return total
}

func reverse(s []int, i, k int) {
	for i < k {
		s[i], s[k] = s[k], s[i]
		i++
		k--
	}
}
