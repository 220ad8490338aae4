package snake

import (
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/spatial"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// RowCandidates bounds how many nearest neighbours of a row seed are
	// considered for that row.
	RowCandidates = 50
	// DirectionWeight scales the penalty for leaving the previous row's heading.
	DirectionWeight = 0.3
)

// OptimizedPath orders members in rows grown from spatial neighbourhoods.
// Seeds are taken in ascending Y; each row collects the seed's nearest
// unassigned members within rowTolerance in Y. Rows alternate direction and
// are then reordered greedily, penalising steps that leave the previous
// row's heading. The result is a permutation of members with no connectors.
func OptimizedPath(points []geom.Point, members []int, rowTolerance float64) []Step {
	if len(members) == 0 {
		return nil
	}

	local := make([]geom.Point, len(members))
	for i, m := range members {
		local[i] = points[m]
	}

	rows := collectRows(local, rowTolerance)

	steps := make([]Step, 0, len(members))
	var heading *geom.Point
	for i, row := range rows {
		row = orderRow(local, row, i%2 == 1, heading)
		for _, r := range row {
			steps = append(steps, Step{Index: members[r]})
		}
		if len(row) >= 2 {
			h := geom.Direction(local[row[0]], local[row[len(row)-1]])
			heading = &h
		}
	}
	return steps
}

// collectRows groups local indices into rows. A non-positive tolerance
// accepts any Y difference, so rows are bounded only by RowCandidates.
func collectRows(local []geom.Point, tolerance float64) [][]int {
	byY := make([]int, len(local))
	for i := range byY {
		byY[i] = i
	}
	sort.SliceStable(byY, func(i, j int) bool { return local[byY[i]].Y < local[byY[j]].Y })

	idx := spatial.Build(local, spatial.Options{})
	processed := spatial.NewMask(len(local))
	k := RowCandidates
	if k > len(local) {
		k = len(local)
	}

	var rows [][]int
	for _, seed := range byY {
		if processed.Has(seed) {
			continue
		}
		var row []int
		for _, c := range idx.QueryNearest(local[seed], k, processed) {
			if tolerance <= 0 || math.Abs(local[c].Y-local[seed].Y) <= tolerance {
				row = append(row, c)
				processed.Add(c)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// orderRow sorts a row by X (descending when reverse) and then rebuilds it
// greedily from its first point. Without a heading the greedy step is plain
// nearest neighbour.
func orderRow(local []geom.Point, row []int, reverse bool, heading *geom.Point) []int {
	sorted := make([]int, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool {
		if reverse {
			return local[sorted[i]].X > local[sorted[j]].X
		}
		return local[sorted[i]].X < local[sorted[j]].X
	})
	if len(sorted) <= 2 {
		return sorted
	}

	out := []int{sorted[0]}
	remaining := sorted[1:]
	cur := sorted[0]
	for len(remaining) > 0 {
		best, bestScore := 0, math.Inf(1)
		for i, c := range remaining {
			d := geom.Distance(local[cur], local[c])
			score := d
			if heading != nil && d > geom.MinDirectionLength {
				dir := r2.Scale(1/d, r2.Sub(local[c], local[cur]))
				score += (1 - r2.Dot(dir, *heading)) * DirectionWeight * d
			}
			if score < bestScore {
				best, bestScore = i, score
			}
		}
		cur = remaining[best]
		out = append(out, cur)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out
}
