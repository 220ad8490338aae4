package spatial

import (
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
	"gonum.org/v1/gonum/stat"
)

// Constants for grid index configuration
const (
	// MaxGridSize caps the number of cells along each axis.
	MaxGridSize = 100
	// SubdivideThreshold is the cell population above which a cell is split
	// into four quadrants.
	SubdivideThreshold = 100
	// CandidateOverCollect is the multiple of k gathered before the exact sort.
	CandidateOverCollect = 3
	// AverageDistanceSample bounds the points sampled by AverageNearestNeighbor.
	AverageDistanceSample = 1000
)

// Options configures Build. Zero values select the defaults.
type Options struct {
	GridSize           int // cells per axis; default min(100, round(sqrt(n)))
	SubdivideThreshold int // default SubdivideThreshold
}

// DefaultGridSize returns min(100, round(sqrt(n))), at least 1.
func DefaultGridSize(n int) int {
	g := int(math.Round(math.Sqrt(float64(n))))
	if g > MaxGridSize {
		g = MaxGridSize
	}
	if g < 1 {
		g = 1
	}
	return g
}

type cell struct {
	members []int
	quads   *[4]cell
}

// Index is a grid nearest-neighbour index over a fixed point set.
type Index struct {
	points   []geom.Point
	bounds   geom.Rect
	gridSize int
	cellW    float64
	cellH    float64
	cells    []cell // row-major, x + y*gridSize
}

// Stats summarises the index layout.
type Stats struct {
	TotalCells    int     `json:"total_cells"`
	NonEmptyCells int     `json:"non_empty_cells"`
	Subdivisions  int     `json:"subdivisions"`
	AvgOccupancy  float64 `json:"avg_occupancy"` // points per non-empty cell
}

// Build lays a grid over points and assigns every point to a cell.
// The slice is retained and must not be modified while the index is in use.
func Build(points []geom.Point, opts Options) *Index {
	g := opts.GridSize
	if g <= 0 {
		g = DefaultGridSize(len(points))
	}
	threshold := opts.SubdivideThreshold
	if threshold <= 0 {
		threshold = SubdivideThreshold
	}

	idx := &Index{
		points:   points,
		bounds:   geom.Bounds(points, nil),
		gridSize: g,
		cells:    make([]cell, g*g),
	}
	idx.cellW = cellExtent(idx.bounds.Max.X-idx.bounds.Min.X, g)
	idx.cellH = cellExtent(idx.bounds.Max.Y-idx.bounds.Min.Y, g)

	for i, p := range points {
		cx, cy := idx.cellOf(p)
		c := &idx.cells[cx+cy*g]
		c.members = append(c.members, i)
	}

	for cx := 0; cx < g; cx++ {
		for cy := 0; cy < g; cy++ {
			c := &idx.cells[cx+cy*g]
			if len(c.members) > threshold {
				idx.subdivide(c, cx, cy)
			}
		}
	}
	return idx
}

// cellExtent returns the cell width for an axis; degenerate axes use unit cells.
func cellExtent(span float64, g int) float64 {
	if span <= 0 {
		return 1
	}
	return span / float64(g)
}

func (idx *Index) cellOf(p geom.Point) (int, int) {
	cx := int(math.Floor((p.X - idx.bounds.Min.X) / idx.cellW))
	cy := int(math.Floor((p.Y - idx.bounds.Min.Y) / idx.cellH))
	return clampCell(cx, idx.gridSize), clampCell(cy, idx.gridSize)
}

func clampCell(c, g int) int {
	if c < 0 {
		return 0
	}
	if c >= g {
		return g - 1
	}
	return c
}

// subdivide splits a crowded cell once into four quadrants by its midpoint.
func (idx *Index) subdivide(c *cell, cx, cy int) {
	midX := idx.bounds.Min.X + (float64(cx)+0.5)*idx.cellW
	midY := idx.bounds.Min.Y + (float64(cy)+0.5)*idx.cellH

	var quads [4]cell
	for _, m := range c.members {
		p := idx.points[m]
		q := 0
		if p.X > midX {
			q++
		}
		if p.Y > midY {
			q += 2
		}
		quads[q].members = append(quads[q].members, m)
	}
	c.quads = &quads
	c.members = nil
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return len(idx.points)
}

// Point returns the indexed point i.
func (idx *Index) Point(i int) geom.Point {
	return idx.points[i]
}

// GridSize returns the number of cells along each axis.
func (idx *Index) GridSize() int {
	return idx.gridSize
}

type candidate struct {
	id int
	d2 float64
}

// QueryNearest returns up to k indices of the points nearest to q, nearest
// first, skipping indices in exclude. Ties are broken by ascending index.
// The result equals a brute-force scan over the non-excluded points.
func (idx *Index) QueryNearest(q geom.Point, k int, exclude *Mask) []int {
	if k <= 0 || len(idx.points) == 0 {
		return nil
	}

	g := idx.gridSize
	gx, gy := idx.cellOf(q)
	want := CandidateOverCollect * k
	cands := make([]candidate, 0, want)

	for r := 0; r <= g; r++ {
		idx.collectRing(q, gx, gy, r, exclude, &cands)

		if r >= g {
			break
		}
		if len(cands) < want {
			continue
		}
		// Enough candidates: stop once the k-th nearest is inside the
		// region already swept, so no unvisited cell can hold a closer point.
		sortCandidates(cands)
		kth := math.Sqrt(cands[k-1].d2)
		if kth < idx.coveredRadius(q, gx, gy, r) {
			break
		}
	}

	sortCandidates(cands)
	if len(cands) > k {
		cands = cands[:k]
	}
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}

func sortCandidates(cands []candidate) {
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].d2 != cands[b].d2 {
			return cands[a].d2 < cands[b].d2
		}
		return cands[a].id < cands[b].id
	})
}

// collectRing gathers the members of the cells at Chebyshev radius r.
func (idx *Index) collectRing(q geom.Point, gx, gy, r int, exclude *Mask, out *[]candidate) {
	g := idx.gridSize
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if abs(dx) != r && abs(dy) != r {
				continue
			}
			nx, ny := gx+dx, gy+dy
			if nx < 0 || nx >= g || ny < 0 || ny >= g {
				continue
			}
			idx.collectCell(q, &idx.cells[nx+ny*g], exclude, out)
		}
	}
}

func (idx *Index) collectCell(q geom.Point, c *cell, exclude *Mask, out *[]candidate) {
	if c.quads != nil {
		for i := range c.quads {
			idx.collectCell(q, &c.quads[i], exclude, out)
		}
		return
	}
	for _, m := range c.members {
		if exclude.Has(m) {
			continue
		}
		*out = append(*out, candidate{id: m, d2: geom.Distance2(q, idx.points[m])})
	}
}

// coveredRadius is the distance from q to the nearest edge of the swept
// square of cells. Edges on the grid boundary do not limit coverage.
func (idx *Index) coveredRadius(q geom.Point, gx, gy, r int) float64 {
	g := idx.gridSize
	covered := math.Inf(1)
	if gx-r > 0 {
		edge := idx.bounds.Min.X + float64(gx-r)*idx.cellW
		covered = math.Min(covered, q.X-edge)
	}
	if gx+r < g-1 {
		edge := idx.bounds.Min.X + float64(gx+r+1)*idx.cellW
		covered = math.Min(covered, edge-q.X)
	}
	if gy-r > 0 {
		edge := idx.bounds.Min.Y + float64(gy-r)*idx.cellH
		covered = math.Min(covered, q.Y-edge)
	}
	if gy+r < g-1 {
		edge := idx.bounds.Min.Y + float64(gy+r+1)*idx.cellH
		covered = math.Min(covered, edge-q.Y)
	}
	return math.Max(0, covered)
}

// NearestExcept returns the nearest point to q outside exclude, or -1.
func (idx *Index) NearestExcept(q geom.Point, exclude *Mask) int {
	ids := idx.QueryNearest(q, 1, exclude)
	if len(ids) == 0 {
		return -1
	}
	return ids[0]
}

// AverageNearestNeighbor returns the mean distance from each of the first
// sample points to its nearest other point. Fewer than two points yield 1.
func (idx *Index) AverageNearestNeighbor(sample int) float64 {
	n := len(idx.points)
	if n < 2 {
		return 1.0
	}
	if sample <= 0 || sample > n {
		sample = n
	}
	dists := make([]float64, 0, sample)
	for i := 0; i < sample; i++ {
		for _, id := range idx.QueryNearest(idx.points[i], 2, nil) {
			if id != i {
				dists = append(dists, geom.Distance(idx.points[i], idx.points[id]))
				break
			}
		}
	}
	if len(dists) == 0 {
		return 1.0
	}
	return stat.Mean(dists, nil)
}

// Stats reports cell occupancy for diagnostics.
func (idx *Index) Stats() Stats {
	s := Stats{TotalCells: len(idx.cells)}
	for i := range idx.cells {
		c := &idx.cells[i]
		pop := len(c.members)
		if c.quads != nil {
			s.Subdivisions++
			for q := range c.quads {
				pop += len(c.quads[q].members)
			}
		}
		if pop > 0 {
			s.NonEmptyCells++
		}
	}
	if s.NonEmptyCells > 0 {
		s.AvgOccupancy = float64(len(idx.points)) / float64(s.NonEmptyCells)
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
