package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/holepath/internal/geom"
)

// DefaultConfigPath is the path to the canonical planning defaults file.
const DefaultConfigPath = "config/planning.defaults.json"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// PlanningConfig is the resolved, read-only configuration for one planning run.
type PlanningConfig struct {
	PointTolerance        float64     `json:"point_tolerance"`
	ClusterTolerance      float64     `json:"cluster_tolerance"`
	Algorithm             Algorithm   `json:"algorithm"`
	RotationAngleDegrees  float64     `json:"rotation_angle_degrees"`
	SpiralRadiusIncrement float64     `json:"spiral_radius_increment"`
	SpiralAngleStep       float64     `json:"spiral_angle_step"`
	SpiralStartRadius     float64     `json:"spiral_start_radius"`
	SpiralCenter          *geom.Point `json:"spiral_center,omitempty"`

	StrictSnake    bool `json:"strict_snake"`
	OptimizeTravel bool `json:"optimize_travel"`
	Center         bool `json:"center"`
	Lookahead      bool `json:"lookahead"`
	TwoOptPasses   int  `json:"two_opt_passes"`
}

// DefaultPlanningConfig returns the built-in defaults. They match
// config/planning.defaults.json.
func DefaultPlanningConfig() PlanningConfig {
	return (&PlanningFile{}).resolve()
}

// Validate rejects values no strategy can work with. Non-positive tolerances
// are allowed and collapse the set into one cluster and one row. Spiral step
// sizes are not checked here: a non-positive step makes the spiral strategy
// fall back.
func (c PlanningConfig) Validate() error {
	if !c.Algorithm.Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrUnknownAlgorithm, int(c.Algorithm))
	}
	for name, v := range map[string]float64{
		"point_tolerance":         c.PointTolerance,
		"cluster_tolerance":       c.ClusterTolerance,
		"rotation_angle_degrees":  c.RotationAngleDegrees,
		"spiral_radius_increment": c.SpiralRadiusIncrement,
		"spiral_angle_step":       c.SpiralAngleStep,
		"spiral_start_radius":     c.SpiralStartRadius,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, name, v)
		}
	}
	if c.SpiralCenter != nil {
		if err := geom.Validate([]geom.Point{*c.SpiralCenter}); err != nil {
			return fmt.Errorf("%w: spiral_center: %w", ErrInvalidConfig, err)
		}
	}
	if c.TwoOptPasses < 0 {
		return fmt.Errorf("%w: two_opt_passes must be non-negative, got %d", ErrInvalidConfig, c.TwoOptPasses)
	}
	return nil
}

// PlanningFile is the on-disk JSON schema. Every field is optional; the Get*
// methods supply defaults for anything omitted.
type PlanningFile struct {
	PointTolerance        *float64  `json:"point_tolerance,omitempty"`
	ClusterTolerance      *float64  `json:"cluster_tolerance,omitempty"`
	Algorithm             *string   `json:"algorithm,omitempty"`
	RotationAngleDegrees  *float64  `json:"rotation_angle_degrees,omitempty"`
	SpiralRadiusIncrement *float64  `json:"spiral_radius_increment,omitempty"`
	SpiralAngleStep       *float64  `json:"spiral_angle_step,omitempty"`
	SpiralStartRadius     *float64  `json:"spiral_start_radius,omitempty"`
	SpiralCenter          *XYConfig `json:"spiral_center,omitempty"`

	StrictSnake    *bool `json:"strict_snake,omitempty"`
	OptimizeTravel *bool `json:"optimize_travel,omitempty"`
	Center         *bool `json:"center,omitempty"`
	Lookahead      *bool `json:"lookahead,omitempty"`
	TwoOptPasses   *int  `json:"two_opt_passes,omitempty"`
}

// XYConfig is a point in the JSON schema.
type XYConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// LoadPlanningFile loads a PlanningFile from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Fields omitted from the file keep their defaults, so partial configs are safe.
func LoadPlanningFile(path string) (*PlanningFile, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	f := &PlanningFile{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and a few parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *PlanningFile {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/tour-compare/
	}
	for _, path := range candidates {
		if f, err := LoadPlanningFile(path); err == nil {
			return f
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the fields that are set.
func (f *PlanningFile) Validate() error {
	if f.Algorithm != nil {
		if _, err := ParseAlgorithm(*f.Algorithm); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return f.resolve().Validate()
}

// Resolve applies defaults and returns a validated PlanningConfig.
func (f *PlanningFile) Resolve() (PlanningConfig, error) {
	if err := f.Validate(); err != nil {
		return PlanningConfig{}, err
	}
	return f.resolve(), nil
}

func (f *PlanningFile) resolve() PlanningConfig {
	c := PlanningConfig{
		PointTolerance:        f.GetPointTolerance(),
		ClusterTolerance:      f.GetClusterTolerance(),
		Algorithm:             f.GetAlgorithm(),
		RotationAngleDegrees:  f.GetRotationAngleDegrees(),
		SpiralRadiusIncrement: f.GetSpiralRadiusIncrement(),
		SpiralAngleStep:       f.GetSpiralAngleStep(),
		SpiralStartRadius:     f.GetSpiralStartRadius(),
		StrictSnake:           f.GetStrictSnake(),
		OptimizeTravel:        f.GetOptimizeTravel(),
		Center:                f.GetCenter(),
		Lookahead:             f.GetLookahead(),
		TwoOptPasses:          f.GetTwoOptPasses(),
	}
	if f.SpiralCenter != nil {
		c.SpiralCenter = &geom.Point{X: f.SpiralCenter.X, Y: f.SpiralCenter.Y}
	}
	return c
}

// GetPointTolerance returns the point_tolerance value or the default.
func (f *PlanningFile) GetPointTolerance() float64 {
	if f.PointTolerance == nil {
		return 10.0
	}
	return *f.PointTolerance
}

// GetClusterTolerance returns the cluster_tolerance value or the default.
func (f *PlanningFile) GetClusterTolerance() float64 {
	if f.ClusterTolerance == nil {
		return 1000.0
	}
	return *f.ClusterTolerance
}

// GetAlgorithm returns the parsed algorithm, or Cluster when unset or unknown.
// Validate reports unknown names.
func (f *PlanningFile) GetAlgorithm() Algorithm {
	if f.Algorithm == nil {
		return Cluster
	}
	a, err := ParseAlgorithm(*f.Algorithm)
	if err != nil {
		return Cluster
	}
	return a
}

// GetRotationAngleDegrees returns the rotation_angle_degrees value or the default.
func (f *PlanningFile) GetRotationAngleDegrees() float64 {
	if f.RotationAngleDegrees == nil {
		return 0
	}
	return *f.RotationAngleDegrees
}

// GetSpiralRadiusIncrement returns the spiral_radius_increment value or the default.
func (f *PlanningFile) GetSpiralRadiusIncrement() float64 {
	if f.SpiralRadiusIncrement == nil {
		return 1.0
	}
	return *f.SpiralRadiusIncrement
}

// GetSpiralAngleStep returns the spiral_angle_step value or the default.
func (f *PlanningFile) GetSpiralAngleStep() float64 {
	if f.SpiralAngleStep == nil {
		return 0.1
	}
	return *f.SpiralAngleStep
}

// GetSpiralStartRadius returns the spiral_start_radius value or the default.
func (f *PlanningFile) GetSpiralStartRadius() float64 {
	if f.SpiralStartRadius == nil {
		return 0
	}
	return *f.SpiralStartRadius
}

// GetStrictSnake returns the strict_snake value or the default.
func (f *PlanningFile) GetStrictSnake() bool {
	if f.StrictSnake == nil {
		return false
	}
	return *f.StrictSnake
}

// GetOptimizeTravel returns the optimize_travel value or the default.
func (f *PlanningFile) GetOptimizeTravel() bool {
	if f.OptimizeTravel == nil {
		return true
	}
	return *f.OptimizeTravel
}

// GetCenter returns the center value or the default.
func (f *PlanningFile) GetCenter() bool {
	if f.Center == nil {
		return false
	}
	return *f.Center
}

// GetLookahead returns the lookahead value or the default.
func (f *PlanningFile) GetLookahead() bool {
	if f.Lookahead == nil {
		return false
	}
	return *f.Lookahead
}

// GetTwoOptPasses returns the two_opt_passes value or the default.
func (f *PlanningFile) GetTwoOptPasses() int {
	if f.TwoOptPasses == nil {
		return 0
	}
	return *f.TwoOptPasses
}
