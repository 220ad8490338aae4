package tour

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/holepath/internal/geom"
)

const (
	typePoint    = "point"
	typeBoundary = "boundary"
)

type wireWaypoint struct {
	Type      string   `json:"type"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Index     *int     `json:"index,omitempty"`
	Connector bool     `json:"connector,omitempty"`
}

// MarshalJSON encodes the tour as an array of tagged waypoint objects.
func (t Tour) MarshalJSON() ([]byte, error) {
	wire := make([]wireWaypoint, len(t))
	for i, w := range t {
		switch v := w.(type) {
		case PointVisit:
			x, y, idx := v.Point.X, v.Point.Y, v.Index
			wire[i] = wireWaypoint{Type: typePoint, X: &x, Y: &y, Index: &idx, Connector: v.Connector}
		case GroupBoundary:
			wire[i] = wireWaypoint{Type: typeBoundary}
		default:
			return nil, fmt.Errorf("waypoint %d: unsupported type %T", i, w)
		}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *Tour) UnmarshalJSON(data []byte) error {
	var wire []wireWaypoint
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := make(Tour, len(wire))
	for i, w := range wire {
		switch w.Type {
		case typePoint:
			if w.X == nil || w.Y == nil || w.Index == nil {
				return fmt.Errorf("waypoint %d: point requires x, y and index", i)
			}
			out[i] = PointVisit{Point: geom.Point{X: *w.X, Y: *w.Y}, Index: *w.Index, Connector: w.Connector}
		case typeBoundary:
			out[i] = GroupBoundary{}
		default:
			return fmt.Errorf("waypoint %d: unknown type %q", i, w.Type)
		}
	}
	*t = out
	return nil
}
