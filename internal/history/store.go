// Package history keeps a SQLite record of past sweeps so that failures can
// be tracked across runs and failing cases re-run by index.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// Store is a sweep history database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Run is one stored sweep.
type Run struct {
	ID         string
	Suite      string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
	MaxDiff    float64
	MeanDiff   float64
}

// CaseRow is one stored verdict.
type CaseRow struct {
	Index      int
	Name       string
	Passed     bool
	Measured   float64 // NaN when the case produced no value
	Reference  float64
	Diff       float64
	DurationMs int64
	Error      string
}

// Open opens or creates the database at path and brings its schema up to
// date. Use ":memory:" for a throwaway store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure history %s: %w", path, err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a finished sweep and all its verdicts in one transaction.
func (s *Store) SaveRun(ctx context.Context, sum report.Summary, verdicts []verdict.Verdict) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	finished := sum.Started.Add(sum.Duration)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, suite, started_at, finished_at, total, failed, max_diff, mean_diff)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.Suite, formatTime(sum.Started), formatTime(finished),
		sum.Total, sum.Failed, sum.MaxDiff, sum.MeanDiff,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", sum.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (run_id, idx, name, passed, measured, reference, diff, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range verdicts {
		errText := ""
		if v.Err != nil {
			errText = v.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx,
			sum.RunID, v.Index, v.Case, v.Passed,
			nullable(v.Measured), v.Reference, nullable(v.Diff),
			v.Duration.Milliseconds(), errText,
		); err != nil {
			return fmt.Errorf("insert verdict %s: %w", v.Case, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("run saved", "run", sum.RunID, "cases", len(verdicts))
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryRuns(ctx,
		`SELECT id, suite, started_at, finished_at, total, failed, max_diff, mean_diff
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
}

// LatestRun returns the most recent run of a suite.
func (s *Store) LatestRun(ctx context.Context, suite string) (Run, bool, error) {
	runs, err := s.queryRuns(ctx,
		`SELECT id, suite, started_at, finished_at, total, failed, max_diff, mean_diff
		 FROM runs WHERE suite = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, suite)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Suite, &started, &finished, &r.Total, &r.Failed, &r.MaxDiff, &r.MeanDiff); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FailedCases returns the failed verdicts of a run in index order.
func (s *Store) FailedCases(ctx context.Context, runID string) ([]CaseRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, name, passed, measured, reference, diff, duration_ms, error
		 FROM verdicts WHERE run_id = ? AND passed = 0 ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CaseRow
	for rows.Next() {
		var c CaseRow
		var measured, diff sql.NullFloat64
		if err := rows.Scan(&c.Index, &c.Name, &c.Passed, &measured, &c.Reference, &diff, &c.DurationMs, &c.Error); err != nil {
			return nil, err
		}
		c.Measured = orNaN(measured)
		c.Diff = orInf(diff)
		out = append(out, c)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullable stores non-finite values as NULL.
func nullable(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func orNaN(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

func orInf(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.Inf(1)
	}
	return n.Float64
}
