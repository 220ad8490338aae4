// Package plot draws tours for inspection: static PNGs through gonum/plot and
// interactive HTML pages through go-echarts.
//
// Each group of a tour (the visits between two GroupBoundary markers) gets
// its own colour. Connector visits are drawn on the path but not as holes.
package plot
