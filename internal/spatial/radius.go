package spatial

import (
	"math"

	"github.com/banshee-data/holepath/internal/geom"
)

// EstimatedPointsPerCell is used for initial radius index capacity estimation.
const EstimatedPointsPerCell = 4

// RadiusIndex provides fixed-radius neighbour queries using a sparse grid.
// Cell size equals the query radius so a 3x3 block of cells covers it.
type RadiusIndex struct {
	CellSize float64
	Grid     map[int64][]int // Cell ID → point indices
	points   []geom.Point
}

// NewRadiusIndex builds a radius index over points for queries up to cellSize.
func NewRadiusIndex(points []geom.Point, cellSize float64) *RadiusIndex {
	ri := &RadiusIndex{
		CellSize: cellSize,
		Grid:     make(map[int64][]int, len(points)/EstimatedPointsPerCell+1),
		points:   points,
	}
	for i, p := range points {
		cx, cy := ri.cellCoords(p)
		id := cellKey(cx, cy)
		ri.Grid[id] = append(ri.Grid[id], i)
	}
	return ri
}

func (ri *RadiusIndex) cellCoords(p geom.Point) (int64, int64) {
	return int64(math.Floor(p.X / ri.CellSize)), int64(math.Floor(p.Y / ri.CellSize))
}

// cellKey computes a unique cell identifier using Szudzik's pairing function.
// Handles negative coordinates correctly.
func cellKey(cellX, cellY int64) int64 {
	// Map signed integers to non-negative using zigzag encoding
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}

	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// Within returns indices of all points within eps of points[idx], excluding
// idx itself and anything in skip. eps must not exceed CellSize.
func (ri *RadiusIndex) Within(idx int, eps float64, skip *Mask) []int {
	p := ri.points[idx]
	eps2 := eps * eps
	cellX, cellY := ri.cellCoords(p)

	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, c := range ri.Grid[cellKey(cellX+dx, cellY+dy)] {
				if c == idx || skip.Has(c) {
					continue
				}
				if geom.Distance2(p, ri.points[c]) <= eps2 {
					neighbors = append(neighbors, c)
				}
			}
		}
	}
	return neighbors
}
