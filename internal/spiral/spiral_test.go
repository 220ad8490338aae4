package spiral

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func ring(n int, radius float64) []geom.Point {
	pts := make([]geom.Point, n)
	for k := range pts {
		a := 2 * math.Pi * float64(k) / float64(n)
		pts[k] = geom.Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

func assertPermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	got := append([]int(nil), order...)
	sort.Ints(got)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestProjectInvalidStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"zero radius increment", Options{RadiusIncrement: 0, AngleStep: 0.1}},
		{"negative angle step", Options{RadiusIncrement: 1, AngleStep: -0.1}},
		{"both zero", Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(ring(8, 5), tt.opts)
			assert.True(t, errors.Is(err, ErrInvalidStep))
		})
	}
}

func TestProjectSmallInputs(t *testing.T) {
	t.Parallel()

	opts := Options{RadiusIncrement: 1, AngleStep: 0.1}

	order, err := Project(nil, opts)
	require.NoError(t, err)
	assert.Empty(t, order)

	order, err = Project([]geom.Point{{X: 3, Y: 4}}, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, order)
}

func TestProjectEightPointRing(t *testing.T) {
	t.Parallel()

	// Sparse rings are consumed by the inner turns, so neighbours on
	// either side of the sweep alternate.
	order, err := Project(ring(8, 5), Options{RadiusIncrement: 1, AngleStep: 0.1, StartRadius: 0.5})
	require.NoError(t, err)
	if diff := cmp.Diff([]int{0, 1, 7, 2, 3, 6, 4, 5}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectDenseRingIsMonotonic(t *testing.T) {
	t.Parallel()

	pts := ring(32, 5)
	order, err := Project(pts, Options{RadiusIncrement: 1, AngleStep: 0.1, StartRadius: 0.5})
	require.NoError(t, err)
	assertPermutation(t, order, len(pts))
	for i, v := range order {
		assert.Equal(t, i, v, "position %d", i)
	}
}

func TestProjectExplicitCenter(t *testing.T) {
	t.Parallel()

	// Shift the ring and tell the projector where its middle is.
	shifted := ring(32, 5)
	for i := range shifted {
		shifted[i] = r2.Add(shifted[i], geom.Point{X: 100, Y: -40})
	}
	center := geom.Point{X: 100, Y: -40}
	order, err := Project(shifted, Options{Center: &center, RadiusIncrement: 1, AngleStep: 0.1, StartRadius: 0.5})
	require.NoError(t, err)
	assertPermutation(t, order, len(shifted))
	assert.Equal(t, 0, order[0])
}

func TestProjectLeftoversAppendedByRadius(t *testing.T) {
	t.Parallel()

	// A coarse spiral passes the limit after nine samples.
	pts := make([]geom.Point, 20)
	for k := range pts {
		pts[k] = geom.Point{X: float64(k + 1)}
	}
	origin := geom.Point{}
	order, err := Project(pts, Options{Center: &origin, RadiusIncrement: 100, AngleStep: 1})
	require.NoError(t, err)
	assertPermutation(t, order, len(pts))
	assert.Equal(t, 0, order[0])
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, order[9:]); diff != "" {
		t.Errorf("leftover tail mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectRandomIsPermutation(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	pts := make([]geom.Point, 500)
	for i := range pts {
		pts[i] = geom.Point{X: rng.Float64() * 200, Y: rng.Float64() * 80}
	}
	pts = append(pts, pts[3], pts[3])

	for _, step := range []float64{0.1, 0.5, 3} {
		order, err := Project(pts, Options{RadiusIncrement: 2, AngleStep: step})
		require.NoError(t, err)
		assertPermutation(t, order, len(pts))
	}
}

func TestWrapAngle(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, math.Pi, wrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, wrapAngle(math.Pi), 1e-12)
	assert.InDelta(t, -0.5, wrapAngle(2*math.Pi-0.5), 1e-12)
	assert.InDelta(t, 0.25, wrapAngle(4*math.Pi+0.25), 1e-12)
}
