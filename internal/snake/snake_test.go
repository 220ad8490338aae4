package snake

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func all(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// indices drops connectors and returns the visit order.
func indices(steps []Step) []int {
	out := make([]int, 0, len(steps))
	for _, s := range steps {
		if !s.Connector {
			out = append(out, s.Index)
		}
	}
	return out
}

var square = []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 0}, {X: 10, Y: 10}}

func TestPathSquare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		strict bool
		want   []Step
	}{
		{
			name:   "strict",
			strict: true,
			want:   []Step{{Index: 0}, {Index: 2}, {Index: 3}, {Index: 1}},
		},
		{
			name:   "with connector",
			strict: false,
			want:   []Step{{Index: 0}, {Index: 2}, {Index: 3, Connector: true}, {Index: 3}, {Index: 1}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Path(square, all(4), 1, tt.strict)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Path() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPathSingleRow(t *testing.T) {
	t.Parallel()

	pts := []geom.Point{{X: 5, Y: 100}, {X: 1, Y: -3}, {X: 3, Y: 40}}
	got := Path(pts, all(3), 0, false)
	assert.Equal(t, []Step{{Index: 1}, {Index: 2}, {Index: 0}}, got)

	assert.Empty(t, Path(pts, nil, 10, false))
}

func TestPathExtremeRowRatios(t *testing.T) {
	t.Parallel()

	// y/tolerance well outside the int64 range still separates rows.
	pts := []geom.Point{{X: 0, Y: 1e30}, {X: 0, Y: -1e30}, {X: 0, Y: 0}, {X: 0, Y: 2e30}}
	got := Path(pts, all(len(pts)), 1, true)
	assert.Equal(t, []int{1, 2, 0, 3}, indices(got))
	assert.NotEqual(t, RowKey(1e30, 1), RowKey(2e30, 1))
	assert.NotEqual(t, RowKey(1e300, 1e-300), RowKey(-1e300, 1e-300))
}

func TestPathSubsetAndRounding(t *testing.T) {
	t.Parallel()

	// Row keys use round-half-to-even: 5/10 -> 0, 15/10 -> 2, 14/10 -> 1.
	pts := []geom.Point{
		{X: 0, Y: 5},
		{X: 1, Y: 15},
		{X: 2, Y: 14},
		{X: 3, Y: 0},
		{X: 99, Y: 99}, // not a member
	}
	got := Path(pts, []int{0, 1, 2, 3}, 10, true)
	assert.Equal(t, []int{0, 3, 2, 1}, indices(got))
}

func TestPathPermutation(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	pts := make([]geom.Point, 400)
	for i := range pts {
		pts[i] = geom.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	for _, strict := range []bool{true, false} {
		steps := Path(pts, all(len(pts)), 7, strict)
		idx := indices(steps)
		sort.Ints(idx)
		assert.Equal(t, all(len(pts)), idx)

		connectors := len(steps) - len(pts)
		if strict {
			assert.Zero(t, connectors)
			continue
		}
		rows := map[float64]bool{}
		for _, p := range pts {
			rows[RowKey(p.Y, 7)] = true
		}
		assert.Equal(t, len(rows)-1, connectors)
		for i, s := range steps {
			if s.Connector {
				require.Less(t, i+1, len(steps))
				assert.Equal(t, s.Index, steps[i+1].Index)
				assert.False(t, steps[i+1].Connector)
			}
		}
	}
}

func TestReverse(t *testing.T) {
	t.Parallel()

	steps := []Step{{Index: 0}, {Index: 2}, {Index: 3, Connector: true}, {Index: 3}, {Index: 1}}
	want := []Step{{Index: 1}, {Index: 3}, {Index: 2, Connector: true}, {Index: 2}, {Index: 0}}
	if diff := cmp.Diff(want, Reverse(steps)); diff != "" {
		t.Errorf("Reverse() mismatch (-want +got):\n%s", diff)
	}

	strict := []Step{{Index: 4}, {Index: 5}, {Index: 6}}
	assert.Equal(t, []Step{{Index: 6}, {Index: 5}, {Index: 4}}, Reverse(strict))
	assert.Empty(t, Reverse(nil))
}

func TestOptimizedPath(t *testing.T) {
	t.Parallel()

	// Three clean rows of five points.
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			pts = append(pts, geom.Point{X: float64(x) * 10, Y: float64(y) * 100})
		}
	}
	got := indices(OptimizedPath(pts, all(len(pts)), 5))
	want := []int{0, 1, 2, 3, 4, 9, 8, 7, 6, 5, 10, 11, 12, 13, 14}
	assert.Equal(t, want, got)
}

func TestOptimizedPathPermutation(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	pts := make([]geom.Point, 600)
	for i := range pts {
		pts[i] = geom.Point{X: rng.Float64() * 300, Y: rng.Float64() * 300}
	}
	// Include duplicates; they must both survive.
	pts = append(pts, pts[0], pts[1])

	members := all(len(pts))[100:]
	for _, tol := range []float64{0, 3, 20} {
		steps := OptimizedPath(pts, members, tol)
		got := indices(steps)
		require.Len(t, got, len(steps))
		sort.Ints(got)
		assert.Equal(t, members, got, "tolerance %v", tol)
	}

	assert.Empty(t, OptimizedPath(pts, nil, 5))
	assert.Equal(t, []Step{{Index: 7}}, OptimizedPath(pts, []int{7}, 5))
}
