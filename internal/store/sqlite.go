package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based run store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per backtest run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		start_key TEXT NOT NULL,
		end_key TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		duration INTEGER NOT NULL,
		params TEXT NOT NULL,
		days_requested INTEGER NOT NULL,
		days_simulated INTEGER NOT NULL,
		days_skipped INTEGER NOT NULL,
		holds INTEGER NOT NULL,
		stop_losses INTEGER NOT NULL,
		reentries INTEGER NOT NULL,
		reentry_gaps INTEGER NOT NULL,
		events INTEGER NOT NULL,
		entry_premium TEXT NOT NULL
	);

	-- Order log of each run, seq keeps output order
	CREATE TABLE IF NOT EXISTS run_events (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date_key TEXT NOT NULL,
		time TEXT NOT NULL,
		action TEXT NOT NULL,
		option_type TEXT NOT NULL DEFAULT '',
		strike INTEGER,
		price REAL,
		new_sl REAL,
		target REAL,
		note TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_events_action ON run_events(run_id, action);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Run Methods
// ============================================================================

// SaveRun stores the run header and its events in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord, events []models.TradeEvent) error {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", errors.ErrDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, start_key, end_key, created_at, duration, params,
			days_requested, days_simulated, days_skipped, holds, stop_losses,
			reentries, reentry_gaps, events, entry_premium)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartKey, run.EndKey, run.CreatedAt, int64(run.Duration), string(params),
		run.DaysRequested, run.DaysSimulated, run.DaysSkipped, run.Holds, run.StopLosses,
		run.Reentries, run.ReentryGaps, run.Events, run.EntryPremium)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_events (run_id, seq, date_key, time, action, option_type, strike, price, new_sl, target, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.ExecContext(ctx, run.ID, i, utils.DateKey(e.Date), e.Time.String(), string(e.Action),
			string(e.OptionType), nullInt(e.Strike), nullFloat(e.Price), nullFloat(e.NewSL), nullFloat(e.Target), e.Note)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const runColumns = `id, start_key, end_key, created_at, duration, params,
	days_requested, days_simulated, days_skipped, holds, stop_losses,
	reentries, reentry_gaps, events, entry_premium`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var r RunRecord
	var duration int64
	var params string

	if err := row.Scan(&r.ID, &r.StartKey, &r.EndKey, &r.CreatedAt, &duration, &params,
		&r.DaysRequested, &r.DaysSimulated, &r.DaysSkipped, &r.Holds, &r.StopLosses,
		&r.Reentries, &r.ReentryGaps, &r.Events, &r.EntryPremium); err != nil {
		return nil, err
	}

	r.Duration = time.Duration(duration)
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params of run %s: %w", r.ID, err)
	}
	return &r, nil
}

// GetRun retrieves a single run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, errors.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE 1=1"
	args := []interface{}{}

	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}

	return runs, rows.Err()
}

// DeleteRun removes a run and its events.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("run %s: %w", id, errors.ErrRunNotFound)
	}

	return nil
}

// ============================================================================
// Event Methods
// ============================================================================

// GetRunEvents returns a run's order log in its original order.
func (s *SQLiteStore) GetRunEvents(ctx context.Context, id string) ([]models.TradeEvent, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date_key, time, action, option_type, strike, price, new_sl, target, note
		FROM run_events WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.TradeEvent
	for rows.Next() {
		var e models.TradeEvent
		var key, at, action, optionType string
		var strike sql.NullInt64
		var price, newSL, target sql.NullFloat64

		if err := rows.Scan(&key, &at, &action, &optionType, &strike, &price, &newSL, &target, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if e.Date, err = utils.ParseDateKey(key); err != nil {
			return nil, fmt.Errorf("bad date in run %s: %w", id, err)
		}
		if e.Time, err = models.ParseClock(at); err != nil {
			return nil, fmt.Errorf("bad time in run %s: %w", id, err)
		}
		e.Action = models.Action(action)
		e.OptionType = models.OptionType(optionType)
		if strike.Valid {
			e.Strike = models.IntPtr(int(strike.Int64))
		}
		e.Price = floatPtr(price)
		e.NewSL = floatPtr(newSL)
		e.Target = floatPtr(target)

		events = append(events, e)
	}

	return events, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.FloatPtr(v.Float64)
}
