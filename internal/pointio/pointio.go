// Package pointio reads point sets from disk. The planner only sees the
// Parser interface; CAD formats plug in as further implementations.
package pointio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/holepath/internal/geom"
)

// ErrUnsupportedFormat is returned by ForPath for unknown extensions.
var ErrUnsupportedFormat = errors.New("pointio: unsupported point file format")

// Parser reads a point set from a file.
type Parser interface {
	Parse(path string) ([]geom.Point, error)
}

// ForPath picks a parser by file extension: .csv or .json.
func ForPath(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return CSVParser{}, nil
	case ".json":
		return JSONParser{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load parses path with the parser ForPath selects.
func Load(path string) ([]geom.Point, error) {
	p, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open point file: %w", err)
	}
	return f, nil
}
