package pointio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/holepath/internal/geom"
)

// JSONParser reads an array of {"x": .., "y": ..} objects.
type JSONParser struct{}

type jsonPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// Parse implements Parser.
func (j JSONParser) Parse(path string) ([]geom.Point, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return j.Read(f)
}

// Read parses JSON from r.
func (JSONParser) Read(r io.Reader) ([]geom.Point, error) {
	var raw []jsonPoint
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse point JSON: %w", err)
	}
	points := make([]geom.Point, len(raw))
	for i, p := range raw {
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("point %d: missing x or y", i)
		}
		points[i] = geom.Point{X: *p.X, Y: *p.Y}
	}
	if err := geom.Validate(points); err != nil {
		return nil, err
	}
	return points, nil
}
