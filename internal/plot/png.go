package plot

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/holepath/internal/tour"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PNGSize is the edge length of saved tour images.
const PNGSize = 8 * vg.Inch

// NewTourPlot builds a gonum plot of t: one coloured path per group, holes as
// dots and the start marked with a ring.
func NewTourPlot(t tour.Tour, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	gs := groups(t)
	colors := palette(len(gs))
	for i, g := range gs {
		path := make(plotter.XYs, len(g))
		holes := make(plotter.XYs, 0, len(g))
		for j, v := range g {
			path[j] = plotter.XY{X: v.Point.X, Y: v.Point.Y}
			if !v.Connector {
				holes = append(holes, path[j])
			}
		}

		line, err := plotter.NewLine(path)
		if err != nil {
			return nil, fmt.Errorf("group %d path: %w", i, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)

		dots, err := plotter.NewScatter(holes)
		if err != nil {
			return nil, fmt.Errorf("group %d holes: %w", i, err)
		}
		dots.GlyphStyle.Color = colors[i]
		dots.GlyphStyle.Radius = vg.Points(1.5)
		dots.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(dots)
		if len(gs) > 1 {
			p.Legend.Add(fmt.Sprintf("group %d", i+1), line)
		}
	}

	if v := t.Visits(); len(v) > 0 {
		start, err := plotter.NewScatter(plotter.XYs{{X: v[0].Point.X, Y: v[0].Point.Y}})
		if err != nil {
			return nil, err
		}
		start.GlyphStyle.Color = color.Black
		start.GlyphStyle.Radius = vg.Points(4)
		start.GlyphStyle.Shape = draw.RingGlyph{}
		p.Add(start)
		p.Legend.Add("start", start)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG writes the tour plot to path. The extension picks the format, as
// with plot.Save.
func SavePNG(t tour.Tour, title, path string) error {
	p, err := NewTourPlot(t, title)
	if err != nil {
		return err
	}
	if err := p.Save(PNGSize, PNGSize, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
