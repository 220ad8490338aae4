package runstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/holepath/internal/tour"
	"github.com/google/uuid"
)

// ComparisonRun is one invocation of the comparison tool over a point set.
type ComparisonRun struct {
	RunID      string          `json:"run_id"`
	Source     string          `json:"source"`
	PointCount int             `json:"point_count"`
	ConfigJSON json.RawMessage `json:"config_json,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// StrategyResult is the outcome of one strategy within a ComparisonRun.
type StrategyResult struct {
	ResultID      string        `json:"result_id"`
	RunID         string        `json:"run_id"`
	Algorithm     string        `json:"algorithm"`
	Used          string        `json:"used"`
	Fallback      string        `json:"fallback,omitempty"`
	Visits        int           `json:"visits"`
	Connectors    int           `json:"connectors"`
	Boundaries    int           `json:"boundaries"`
	Length        float64       `json:"length"`
	Reversals     int           `json:"reversals"`
	NearReversals int           `json:"near_reversals"`
	Duration      time.Duration `json:"duration_ns"`
}

// NewStrategyResult fills a StrategyResult from a tour summary.
func NewStrategyResult(runID, algorithm, used, fallback string, s tour.Summary, d time.Duration) *StrategyResult {
	return &StrategyResult{
		RunID:         runID,
		Algorithm:     algorithm,
		Used:          used,
		Fallback:      fallback,
		Visits:        s.Visits,
		Connectors:    s.Connectors,
		Boundaries:    s.Boundaries,
		Length:        s.Length,
		Reversals:     s.Reversals,
		NearReversals: s.NearReversals,
		Duration:      d,
	}
}

// InsertRun persists a run. Empty RunID and zero CreatedAt are filled in.
func (s *Store) InsertRun(run *ComparisonRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var cfg interface{}
	if len(run.ConfigJSON) > 0 {
		cfg = string(run.ConfigJSON)
	}
	_, err := s.db.Exec(`
		INSERT INTO comparison_runs (run_id, source, point_count, config_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.PointCount, cfg, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comparison run: %w", err)
	}
	return nil
}

// InsertResult persists a strategy result. An empty ResultID is filled in.
func (s *Store) InsertResult(r *StrategyResult) error {
	if r.ResultID == "" {
		r.ResultID = uuid.New().String()
	}
	var fallback interface{}
	if r.Fallback != "" {
		fallback = r.Fallback
	}
	_, err := s.db.Exec(`
		INSERT INTO strategy_results (
			result_id, run_id, algorithm, used, fallback,
			visits, connectors, boundaries, length, reversals, near_reversals, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ResultID, r.RunID, r.Algorithm, r.Used, fallback,
		r.Visits, r.Connectors, r.Boundaries, r.Length, r.Reversals, r.NearReversals, int64(r.Duration),
	)
	if err != nil {
		return fmt.Errorf("insert strategy result: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(limit int) ([]*ComparisonRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, point_count, config_json, created_at
		FROM comparison_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query comparison runs: %w", err)
	}
	defer rows.Close()

	var runs []*ComparisonRun
	for rows.Next() {
		var (
			run ComparisonRun
			cfg *string
		)
		if err := rows.Scan(&run.RunID, &run.Source, &run.PointCount, &cfg, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comparison run: %w", err)
		}
		if cfg != nil {
			run.ConfigJSON = json.RawMessage(*cfg)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// ResultsForRun returns the strategy results of runID, shortest tour first.
func (s *Store) ResultsForRun(runID string) ([]*StrategyResult, error) {
	rows, err := s.db.Query(`
		SELECT result_id, run_id, algorithm, used, fallback,
		       visits, connectors, boundaries, length, reversals, near_reversals, duration_ns
		FROM strategy_results
		WHERE run_id = ?
		ORDER BY length ASC, algorithm ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query strategy results: %w", err)
	}
	defer rows.Close()

	var out []*StrategyResult
	for rows.Next() {
		var (
			r        StrategyResult
			fallback *string
			nanos    int64
		)
		if err := rows.Scan(&r.ResultID, &r.RunID, &r.Algorithm, &r.Used, &fallback,
			&r.Visits, &r.Connectors, &r.Boundaries, &r.Length, &r.Reversals, &r.NearReversals, &nanos); err != nil {
			return nil, fmt.Errorf("scan strategy result: %w", err)
		}
		if fallback != nil {
			r.Fallback = *fallback
		}
		r.Duration = time.Duration(nanos)
		out = append(out, &r)
	}
	return out, rows.Err()
}
