package snake

import (
	"math"
	"sort"

	"github.com/banshee-data/holepath/internal/geom"
)

// Step is one entry of an intra-cluster path.
type Step struct {
	Index     int  // position in the point slice
	Connector bool // duplicate of the next row's first point
}

// Reverse returns steps walked from the end. Connectors are rebuilt so each
// one still duplicates the first point of the row it leads into.
func Reverse(steps []Step) []Step {
	var rows [][]int
	for i, s := range steps {
		if s.Connector {
			continue
		}
		if i == 0 || steps[i-1].Connector {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], s.Index)
	}

	out := make([]Step, 0, len(steps))
	for r := len(rows) - 1; r >= 0; r-- {
		row := rows[r]
		if r < len(rows)-1 {
			out = append(out, Step{Index: row[len(row)-1], Connector: true})
		}
		for i := len(row) - 1; i >= 0; i-- {
			out = append(out, Step{Index: row[i]})
		}
	}
	return out
}

// RowKey returns the row bucket of y for the given tolerance: y/tolerance
// rounded half to even. The key stays a float64 so ratios past the int64
// range still land in distinct rows. A non-positive tolerance puts every
// point in row 0.
func RowKey(y, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	return math.RoundToEven(y / tolerance)
}

// Path returns the serpentine order of members: rows by ascending RowKey,
// X ascending on even rows and descending on odd rows. Unless strict, a
// connector duplicating the next row's first point is inserted between rows.
func Path(points []geom.Point, members []int, rowTolerance float64, strict bool) []Step {
	if len(members) == 0 {
		return nil
	}

	rows := make(map[float64][]int)
	for _, m := range members {
		k := RowKey(points[m].Y, rowTolerance)
		rows[k] = append(rows[k], m)
	}
	keys := make([]float64, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ordered := make([][]int, len(keys))
	for i, k := range keys {
		ordered[i] = sortRow(points, rows[k], i%2 == 1)
	}

	steps := make([]Step, 0, len(members)+len(keys))
	for i, row := range ordered {
		if i > 0 && !strict {
			steps = append(steps, Step{Index: row[0], Connector: true})
		}
		for _, m := range row {
			steps = append(steps, Step{Index: m})
		}
	}
	return steps
}

// sortRow orders a row by X, descending when reverse. Equal X keeps
// input order.
func sortRow(points []geom.Point, row []int, reverse bool) []int {
	out := make([]int, len(row))
	copy(out, row)
	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return points[out[i]].X > points[out[j]].X
		}
		return points[out[i]].X < points[out[j]].X
	})
	return out
}
