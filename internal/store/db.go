// Package store persists the three data tiers in SQLite: bronze (raw
// observations, call records, housing CSV rows), silver (normalized jobs and
// housing metrics) and gold (per-city aggregates).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the per-record
// reconciliation operations can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite-backed warehouse.
type Store struct {
	db *sql.DB
	queries
}

// Tx is a transaction-scoped view of the store. All writes made through it
// become visible atomically on Commit.
type Tx struct {
	tx *sql.Tx
	queries
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite wants a single writer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	s := &Store{db: db, queries: queries{q: db}}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Begin starts a transaction for one reconciliation cycle.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx, queries: queries{q: tx}}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate brings the schema to the current version. Version bumps run inside
// one transaction, tracked with PRAGMA user_version.
func (s *Store) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("migrate: reading user_version: %w", err)
	}
	if v >= 1 {
		return tx.Commit()
	}

	for _, stmt := range schemaV1 {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return fmt.Errorf("migrate: setting user_version: %w", err)
	}
	return tx.Commit()
}

var schemaV1 = []string{
	// bronze
	`CREATE TABLE IF NOT EXISTS raw_jobs (
		source     TEXT NOT NULL,
		job_id     TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen  TEXT NOT NULL,
		times_seen INTEGER NOT NULL DEFAULT 1,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (source, job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_jobs_last_seen ON raw_jobs (source, last_seen)`,
	`CREATE TABLE IF NOT EXISTS call_records (
		run_date        TEXT NOT NULL,
		city            TEXT NOT NULL,
		role            TEXT NOT NULL,
		source          TEXT NOT NULL,
		pages_fetched   INTEGER NOT NULL,
		api_count       INTEGER NOT NULL DEFAULT 0,
		api_mean_salary REAL NOT NULL DEFAULT 0,
		jobs_retrieved  INTEGER NOT NULL,
		pulled_at       TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (run_date, city, role, source)
	)`,
	`CREATE TABLE IF NOT EXISTS housing_raw (
		metric   TEXT NOT NULL,
		row_num  INTEGER NOT NULL,
		row_json TEXT NOT NULL,
		PRIMARY KEY (metric, row_num)
	)`,
	// silver
	`CREATE TABLE IF NOT EXISTS jobs (
		source         TEXT NOT NULL,
		job_id         TEXT NOT NULL,
		title          TEXT NOT NULL DEFAULT '',
		company        TEXT NOT NULL DEFAULT '',
		location       TEXT NOT NULL DEFAULT '',
		city           TEXT NOT NULL DEFAULT '',
		county         TEXT NOT NULL DEFAULT '',
		state          TEXT NOT NULL DEFAULT '',
		state_code     TEXT NOT NULL DEFAULT '',
		cbsa_code      TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		category_label TEXT NOT NULL DEFAULT '',
		salary_min     REAL,
		salary_max     REAL,
		post_date      TEXT,
		first_seen     TEXT NOT NULL,
		last_seen      TEXT NOT NULL,
		times_seen     INTEGER NOT NULL DEFAULT 1,
		is_active      INTEGER NOT NULL DEFAULT 0,
		url            TEXT NOT NULL DEFAULT '',
		latitude       REAL NOT NULL DEFAULT 0,
		longitude      REAL NOT NULL DEFAULT 0,
		seniority      TEXT NOT NULL DEFAULT 'mid',
		is_remote      INTEGER NOT NULL DEFAULT 0,
		industry       TEXT NOT NULL DEFAULT '',
		job_type       TEXT NOT NULL DEFAULT '',
		yoe_min        INTEGER NOT NULL DEFAULT 0,
		education      TEXT NOT NULL DEFAULT '',
		processed_at   TEXT NOT NULL,
		updated_at     TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (source, job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_city_state ON jobs (city, state_code)`,
	`CREATE TABLE IF NOT EXISTS housing_metrics (
		region_id     INTEGER NOT NULL,
		size_rank     INTEGER NOT NULL DEFAULT 0,
		region_name   TEXT NOT NULL,
		state_code    TEXT NOT NULL DEFAULT '',
		data_source   TEXT NOT NULL,
		metric_type   TEXT NOT NULL,
		metric_value  REAL NOT NULL,
		date_recorded TEXT NOT NULL,
		processed_at  TEXT NOT NULL
	)`,
	// gold
	`CREATE TABLE IF NOT EXISTS city_day_stats (
		city              TEXT NOT NULL,
		state             TEXT NOT NULL,
		run_date          TEXT NOT NULL,
		total_jobs        INTEGER NOT NULL,
		active_jobs       INTEGER NOT NULL,
		new_jobs          INTEGER NOT NULL,
		expired_jobs      INTEGER NOT NULL,
		jobs_with_salary  INTEGER NOT NULL,
		avg_salary_min    REAL NOT NULL DEFAULT 0,
		avg_salary_max    REAL NOT NULL DEFAULT 0,
		median_salary_min REAL NOT NULL DEFAULT 0,
		median_salary_max REAL NOT NULL DEFAULT 0,
		remote_jobs       INTEGER NOT NULL,
		fulltime_jobs     INTEGER NOT NULL,
		junior_jobs       INTEGER NOT NULL,
		mid_jobs          INTEGER NOT NULL,
		senior_jobs       INTEGER NOT NULL,
		created_at        TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (city, state, run_date)
	)`,
	`CREATE TABLE IF NOT EXISTS city_snapshots (
		city                TEXT NOT NULL,
		state               TEXT NOT NULL,
		active_jobs         INTEGER NOT NULL,
		new_jobs_7d         INTEGER NOT NULL,
		new_jobs_30d        INTEGER NOT NULL,
		avg_salary          REAL NOT NULL DEFAULT 0,
		job_growth_rate_7d  REAL NOT NULL DEFAULT 0,
		job_growth_rate_30d REAL NOT NULL DEFAULT 0,
		top_categories      TEXT NOT NULL DEFAULT '[]',
		last_updated        TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (city, state)
	)`,
}
