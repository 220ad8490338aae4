package tour

import (
	"fmt"
	"math"
	"strings"
)

// Summary is a compact analysis of a finished tour.
type Summary struct {
	InputPoints   int     `json:"input_points"`
	Visits        int     `json:"visits"`
	Connectors    int     `json:"connectors"`
	Boundaries    int     `json:"boundaries"`
	Length        float64 `json:"length"`
	Reversals     int     `json:"reversals"`
	NearReversals int     `json:"near_reversals"` // within 1 degree of 180
}

// Summarize analyses t against an input of n points.
func Summarize(t Tour, n int) Summary {
	return Summary{
		InputPoints:   n,
		Visits:        len(t.Visits()),
		Connectors:    t.Connectors(),
		Boundaries:    t.Boundaries(),
		Length:        t.Length(),
		Reversals:     t.Reversals(),
		NearReversals: t.NearReversals(math.Pi / 180),
	}
}

// String renders the summary as a short multi-line report.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "input points:   %d\n", s.InputPoints)
	fmt.Fprintf(&b, "visits:         %d (%d connectors)\n", s.Visits, s.Connectors)
	fmt.Fprintf(&b, "groups:         %d\n", s.Boundaries+1)
	fmt.Fprintf(&b, "travel length:  %.3f\n", s.Length)
	fmt.Fprintf(&b, "reversals:      %d (%d near 180)\n", s.Reversals, s.NearReversals)
	return b.String()
}
