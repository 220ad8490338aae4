package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/holepath/internal/config"
	"github.com/banshee-data/holepath/internal/pointio"
	"github.com/banshee-data/holepath/internal/runstore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"points", Config{PointsFile: "holes.csv"}, false},
		{"random", Config{Random: 10, Extent: 100}, false},
		{"neither", Config{}, true},
		{"both", Config{PointsFile: "holes.csv", Random: 10, Extent: 100}, true},
		{"zero extent", Config{Random: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.check()
			if (err != nil) != tt.wantErr {
				t.Errorf("check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRandomPointsDeterministic(t *testing.T) {
	a := randomPoints(25, 7, 50)
	b := randomPoints(25, 7, 50)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different points (-a +b):\n%s", diff)
	}
	for _, p := range a {
		assert.True(t, p.X >= 0 && p.X < 50 && p.Y >= 0 && p.Y < 50, "point %v outside extent", p)
	}
	assert.NotEqual(t, a, randomPoints(25, 8, 50))
}

func TestRunComparison(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Random:     60,
		Seed:       3,
		Extent:     500,
		PlotsDir:   filepath.Join(dir, "plots"),
		DBPath:     filepath.Join(dir, "runs.db"),
		SavePoints: filepath.Join(dir, "points.csv"),
	}

	result, err := runComparison(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, result.Strategies, len(config.Algorithms()))
	assert.Equal(t, 60, result.PointCount)

	for _, s := range result.Strategies {
		assert.NoError(t, s.Tour.CheckPermutation(60), s.Algorithm.String())
		assert.Equal(t, 60, s.Summary.Visits-s.Summary.Connectors, s.Algorithm.String())
		assert.FileExists(t, filepath.Join(cfg.PlotsDir, s.Algorithm.String()+".png"))
	}
	assert.FileExists(t, filepath.Join(cfg.PlotsDir, "tours.html"))

	saved, err := pointio.Load(cfg.SavePoints)
	require.NoError(t, err)
	assert.Len(t, saved, 60)

	store, err := runstore.Open(cfg.DBPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	results, err := store.ResultsForRun(result.RunID)
	require.NoError(t, err)
	assert.Len(t, results, len(config.Algorithms()))
}

func TestRunComparisonFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holes.csv")
	require.NoError(t, os.WriteFile(path, []byte("0,0\n10,0\n20,0\n0,10\n10,10\n20,10\n"), 0o600))

	result, err := runComparison(context.Background(), Config{PointsFile: path})
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)

	var buf bytes.Buffer
	printResults(&buf, result)
	out := buf.String()
	assert.Contains(t, out, "Tour Comparison Results")
	for _, alg := range config.Algorithms() {
		assert.Contains(t, out, alg.String())
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	result := &ComparisonResult{RunID: "r1", Source: "test", PointCount: 0}
	require.NoError(t, exportJSON(result, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "r1"`)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.txt")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "x,y\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,y\n", string(data))

	errWrite := errors.New("write failed")
	err = writeFile(path, func(io.Writer) error { return errWrite })
	assert.True(t, errors.Is(err, errWrite))

	err = writeFile(filepath.Join(dir, "missing", "out.json"), func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "failed to create")
}
