package plot

import (
	"fmt"
	"io"

	"github.com/banshee-data/holepath/internal/tour"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// NamedTour is a tour with the caption used in an HTML page.
type NamedTour struct {
	Name string
	Tour tour.Tour
}

// TourChart renders t as an XY line chart, one series per group.
func TourChart(t tour.Tour, title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	gs := groups(t)
	colors := palette(len(gs))
	for i, g := range gs {
		data := make([]opts.LineData, len(g))
		for j, v := range g {
			data[j] = opts.LineData{Value: []interface{}{v.Point.X, v.Point.Y, v.Index}}
		}
		line.AddSeries(fmt.Sprintf("group %d", i+1), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[i])}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: hexColor(colors[i]), Width: 1}),
		)
	}
	return line
}

// WriteHTML renders one chart per tour into a single page.
func WriteHTML(w io.Writer, tours []NamedTour) error {
	page := components.NewPage()
	page.PageTitle = "tour comparison"
	for _, nt := range tours {
		sub := fmt.Sprintf("visits=%d boundaries=%d length=%.1f",
			len(nt.Tour.Visits()), nt.Tour.Boundaries(), nt.Tour.Length())
		page.AddCharts(TourChart(nt.Tour, nt.Name, sub))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
