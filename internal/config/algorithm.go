package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for names it does not know.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm selects the tour construction strategy.
type Algorithm int

const (
	Cluster Algorithm = iota
	EnhancedCluster
	SnakePath
	NearestNeighbor
	SpiralFill
	HeuristicSearch
)

var algorithmNames = [...]string{
	Cluster:         "cluster",
	EnhancedCluster: "enhanced-cluster",
	SnakePath:       "snake",
	NearestNeighbor: "nearest-neighbor",
	SpiralFill:      "spiral",
	HeuristicSearch: "heuristic",
}

// Algorithms lists every strategy in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{Cluster, EnhancedCluster, SnakePath, NearestNeighbor, SpiralFill, HeuristicSearch}
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Valid reports whether a names a known strategy.
func (a Algorithm) Valid() bool {
	return a >= 0 && int(a) < len(algorithmNames)
}

// ParseAlgorithm accepts the canonical names plus case, dash, underscore and
// space variants, so "NearestNeighbor", "nearest_neighbor" and
// "nearest-neighbor" are equivalent.
func ParseAlgorithm(s string) (Algorithm, error) {
	key := normalizeName(s)
	for _, a := range Algorithms() {
		if key == normalizeName(a.String()) {
			return a, nil
		}
	}
	switch key {
	case "snakepath":
		return SnakePath, nil
	case "spiralfill":
		return SpiralFill, nil
	case "heuristicsearch":
		return HeuristicSearch, nil
	case "nn":
		return NearestNeighbor, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
