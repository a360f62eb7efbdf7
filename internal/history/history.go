// Package history keeps a sqlite log of scan cycle runs: when they ran and what they counted.
// Page content is never stored.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Cycle statuses.
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// CycleRecord is one row of cycle_history.
type CycleRecord struct {
	ID           int64
	CycleID      string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Status       string
	Owners       int
	Targets      int
	Alerts       int
	FetchErrors  int
	Recovered    int
	ErrorMessage sql.NullString
}

// Duration returns how long the cycle ran, zero while it is still running.
func (r CycleRecord) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// CycleCounts are the totals written when a cycle ends.
type CycleCounts struct {
	Owners      int
	Targets     int
	Alerts      int
	FetchErrors int
	Recovered   int
}

// Recorder stores cycle bookkeeping.
type Recorder interface {
	RecordCycleStart(ctx context.Context, cycleID string, startedAt time.Time) (int64, error)
	RecordCycleCompletion(ctx context.Context, id int64, finishedAt time.Time, status string, counts CycleCounts, cycleErr error) error
}

// NopRecorder discards everything; used when history is disabled.
type NopRecorder struct{}

func (NopRecorder) RecordCycleStart(context.Context, string, time.Time) (int64, error) {
	return 0, nil
}

func (NopRecorder) RecordCycleCompletion(context.Context, int64, time.Time, string, CycleCounts, error) error {
	return nil
}

// DB wraps the SQL database connection holding cycle history.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDB opens (creating if needed) the sqlite file at path and ensures the schema.
func NewDB(path string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// sqlite allows one writer; a single connection avoids SQLITE_BUSY between the daemon's goroutines.
	dbInstance.SetMaxOpenConns(1)

	db := &DB{db: dbInstance, logger: logger}
	if err := db.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("History database ready")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the cycle_history table if it doesn't already exist.
func (d *DB) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS cycle_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT UNIQUE NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		owners INTEGER DEFAULT 0,
		targets INTEGER DEFAULT 0,
		alerts INTEGER DEFAULT 0,
		fetch_errors INTEGER DEFAULT 0,
		recovered INTEGER DEFAULT 0,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cycle_history_started_at ON cycle_history(started_at);
	`
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

// RecordCycleStart inserts a STARTED row and returns its id.
func (d *DB) RecordCycleStart(ctx context.Context, cycleID string, startedAt time.Time) (int64, error) {
	query := `INSERT INTO cycle_history (cycle_id, started_at, status) VALUES (?, ?, ?)`
	result, err := d.db.ExecContext(ctx, query, cycleID, startedAt.UTC(), StatusStarted)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cycle start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Debug().Int64("db_id", id).Str("cycle_id", cycleID).Msg("Recorded cycle start")
	return id, nil
}

// RecordCycleCompletion stores the outcome of the cycle with the given row id.
func (d *DB) RecordCycleCompletion(ctx context.Context, id int64, finishedAt time.Time, status string, counts CycleCounts, cycleErr error) error {
	errMsg := sql.NullString{}
	if cycleErr != nil {
		errMsg = sql.NullString{String: cycleErr.Error(), Valid: true}
	}

	query := `UPDATE cycle_history
		SET finished_at = ?, status = ?, owners = ?, targets = ?, alerts = ?, fetch_errors = ?, recovered = ?, error_message = ?
		WHERE id = ?`
	res, err := d.db.ExecContext(ctx, query, finishedAt.UTC(), status,
		counts.Owners, counts.Targets, counts.Alerts, counts.FetchErrors, counts.Recovered, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update cycle completion for ID %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("cycle history row %d not found", id)
	}
	d.logger.Debug().Int64("db_id", id).Str("status", status).Msg("Recorded cycle completion")
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (d *DB) RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, cycle_id, started_at, finished_at, status, owners, targets, alerts, fetch_errors, recovered, error_message
		FROM cycle_history ORDER BY started_at DESC, id DESC LIMIT ?`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle history: %w", err)
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		var r CycleRecord
		if err := rows.Scan(&r.ID, &r.CycleID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.Owners, &r.Targets, &r.Alerts, &r.FetchErrors, &r.Recovered, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan cycle history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LastCompletedCycle returns the most recent COMPLETED cycle, or nil when there is none.
func (d *DB) LastCompletedCycle(ctx context.Context) (*CycleRecord, error) {
	query := `SELECT id, cycle_id, started_at, finished_at, status, owners, targets, alerts, fetch_errors, recovered, error_message
		FROM cycle_history WHERE status = ? ORDER BY started_at DESC, id DESC LIMIT 1`
	var r CycleRecord
	err := d.db.QueryRowContext(ctx, query, StatusCompleted).Scan(&r.ID, &r.CycleID, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.Owners, &r.Targets, &r.Alerts, &r.FetchErrors, &r.Recovered, &r.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last completed cycle: %w", err)
	}
	return &r, nil
}

// MarkInterrupted flags STARTED rows left behind by a crashed process as FAILED.
func (d *DB) MarkInterrupted(ctx context.Context, at time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE cycle_history SET status = ?, finished_at = ?, error_message = ? WHERE status = ?`,
		StatusFailed, at.UTC(), "interrupted", StatusStarted)
	if err != nil {
		return 0, fmt.Errorf("failed to mark interrupted cycles: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		d.logger.Warn().Int64("count", n).Msg("Marked interrupted cycles as failed")
	}
	return n, nil
}
