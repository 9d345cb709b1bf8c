/*
Package sqlite provides the SQLite-backed store for OfficeCal.

PURPOSE:
  Implements all persistence for the attendance calendar: departments,
  users, calendar months/days, per-user day statuses and vacation-day
  grants. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  departments:        Unique-named org units (users reference them loosely)
  users:              Accounts with role, remote limit and vacation fields
  calendar_months:    One row per (year, month) with the locked flag
  calendar_days:      Every day of a provisioned month; admin-settable flags
  user_day_statuses:  At most one status row per (user, day); no row = office
  user_vacation_days: Extra vacation allotments per (user, type)

INTEGRITY:
  Foreign keys are enforced (sqlite pragma) with ON DELETE CASCADE from
  months to days to statuses and from users to their statuses and vacation
  rows; department references are SET NULL. Uniqueness violations surface
  as ErrConflict, detected by error-string sniffing - the driver exposes no
  typed constraint error.

CONCURRENCY:
  Uses sync.RWMutex for in-process thread-safety on top of WAL mode. The
  only cross-process race this code resolves itself is concurrent first
  provisioning of a month (see months.go); everything else relies on the
  engine's ACID guarantees.

USAGE:
  store, err := sqlite.New("./officecal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - months.go: month/day provisioning and admin flags
  - statuses.go: status upserts, counters and per-month maps
  - users.go: user, department and vacation-day CRUD
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness violations (duplicate email,
	// department name, vacation type).
	ErrConflict = errors.New("already exists")
)

// Store implements all persistence for OfficeCal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS users (
		id                       INTEGER PRIMARY KEY AUTOINCREMENT,
		display_name             TEXT NOT NULL,
		email                    TEXT NOT NULL UNIQUE,
		role                     TEXT NOT NULL DEFAULT 'employee',
		annual_remote_limit      INTEGER NOT NULL DEFAULT 100,
		start_date               TEXT,
		additional_vacation_days INTEGER NOT NULL DEFAULT 0,
		carryover_vacation_days  INTEGER NOT NULL DEFAULT 0,
		department_id            INTEGER REFERENCES departments(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_display_name ON users(display_name);

	CREATE TABLE IF NOT EXISTS calendar_months (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		year      INTEGER NOT NULL,
		month     INTEGER NOT NULL,
		is_locked INTEGER NOT NULL DEFAULT 0,
		UNIQUE(year, month)
	);

	CREATE TABLE IF NOT EXISTS calendar_days (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		month_id            INTEGER NOT NULL REFERENCES calendar_months(id) ON DELETE CASCADE,
		date                TEXT NOT NULL,
		weekday_name        TEXT NOT NULL,
		is_weekend          INTEGER NOT NULL DEFAULT 0,
		is_holiday          INTEGER NOT NULL DEFAULT 0,
		is_workday_override INTEGER NOT NULL DEFAULT 0,
		UNIQUE(month_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_days_date ON calendar_days(date);

	CREATE TABLE IF NOT EXISTS user_day_statuses (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day_id  INTEGER NOT NULL REFERENCES calendar_days(id) ON DELETE CASCADE,
		status  TEXT NOT NULL,
		note    TEXT,
		UNIQUE(user_id, day_id)
	);

	-- Hot path: counters join statuses to days by user and status.
	CREATE INDEX IF NOT EXISTS idx_statuses_user_status ON user_day_statuses(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_statuses_day ON user_day_statuses(day_id);

	CREATE TABLE IF NOT EXISTS user_vacation_days (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		vacation_type TEXT NOT NULL,
		days_per_year INTEGER NOT NULL DEFAULT 0,
		UNIQUE(user_id, vacation_type)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL SESSION
// =============================================================================

// Tx is a transactional session over the status store. Writes made through
// it are invisible until WithTx's function returns nil and the transaction
// commits; any error rolls everything back.
type Tx struct {
	tx *sql.Tx
}

// WithTx executes fn inside a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
