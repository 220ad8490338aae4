package plot

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/holepath/internal/geom"
	"github.com/banshee-data/holepath/internal/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTour() tour.Tour {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 50, Y: 50}, {X: 60, Y: 50}}
	return tour.Tour{
		tour.PointVisit{Point: pts[0], Index: 0},
		tour.PointVisit{Point: pts[1], Index: 1},
		tour.PointVisit{Point: pts[2], Index: 2, Connector: true},
		tour.PointVisit{Point: pts[2], Index: 2},
		tour.GroupBoundary{},
		tour.GroupBoundary{},
		tour.PointVisit{Point: pts[3], Index: 3},
		tour.PointVisit{Point: pts[4], Index: 4},
	}
}

func TestGroups(t *testing.T) {
	t.Parallel()

	gs := groups(sampleTour())
	require.Len(t, gs, 2)
	assert.Len(t, gs[0], 4)
	assert.Len(t, gs[1], 2)
	assert.Empty(t, groups(nil))
}

func TestPalette(t *testing.T) {
	t.Parallel()

	assert.Nil(t, palette(0))
	cs := palette(3)
	require.Len(t, cs, 3)
	assert.NotEqual(t, cs[0], cs[1])
	assert.Equal(t, "#ff8000", hexColor(color.RGBA{R: 255, G: 128, A: 255}))
}

func TestSavePNG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tour.png")
	require.NoError(t, SavePNG(sampleTour(), "sample", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []NamedTour{{Name: "cluster", Tour: sampleTour()}}))
	out := buf.String()
	assert.Contains(t, out, "cluster")
	assert.Contains(t, out, "group 2")
	assert.Contains(t, out, "echarts")
}
