package pointio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/holepath/internal/geom"
)

// CSVParser reads one "x,y" point per line. Lines starting with '#' are
// comments. A first row whose leading field is not a number is a header; if
// it names "x" and "y" columns those positions are used.
type CSVParser struct{}

// Parse implements Parser.
func (c CSVParser) Parse(path string) ([]geom.Point, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Read(f)
}

// Read parses CSV from r.
func (CSVParser) Read(r io.Reader) ([]geom.Point, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return []geom.Point{}, nil
	}

	xCol, yCol := 0, 1
	first := 0
	if _, err := strconv.ParseFloat(strings.TrimSpace(records[0][0]), 64); err != nil {
		first = 1
		for i, h := range records[0] {
			switch strings.ToLower(strings.TrimSpace(h)) {
			case "x":
				xCol = i
			case "y":
				yCol = i
			}
		}
	}

	points := make([]geom.Point, 0, len(records)-first)
	for i, record := range records[first:] {
		line := i + first + 1
		if len(record) <= xCol || len(record) <= yCol {
			return nil, fmt.Errorf("invalid record at line %d: expected at least %d fields", line, max(xCol, yCol)+1)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(record[xCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x at line %d: %w", line, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(record[yCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid y at line %d: %w", line, err)
		}
		points = append(points, geom.Point{X: x, Y: y})
	}

	if err := geom.Validate(points); err != nil {
		return nil, err
	}
	return points, nil
}

// WriteCSV writes points with an "x,y" header.
func WriteCSV(w io.Writer, points []geom.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
