/*
statuses.go - Per-user day status store

PURPOSE:
  Upserts, deletes and aggregate queries over user_day_statuses. A missing
  row means the implicit default status "office"; that default is applied
  by the callers (team calendar, who-is-in-office), never materialized as
  a zero-value row here.

WRITE CONTRACT:
  UpsertStatus and the delete operations live on Tx: the caller owns the
  transaction boundary, so a whole-month replace (delete-then-reinsert) is
  all-or-nothing. Counters and maps are plain reads on Store.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zhuk18/OfficeCal/calendar"
)

// StatusCell is one (status, note) pair as stored for a user and day.
type StatusCell struct {
	Status calendar.Status
	Note   string
}

// =============================================================================
// WRITES (transactional session)
// =============================================================================

// UpsertStatus sets the status and note for (user, day), mutating the
// existing row in place or inserting a new one. It does not commit.
func (t *Tx) UpsertStatus(ctx context.Context, userID, dayID int64, status calendar.Status, note string) error {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM user_day_statuses WHERE user_id = ? AND day_id = ?`,
		userID, dayID,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		_, err = t.tx.ExecContext(ctx,
			`INSERT INTO user_day_statuses (user_id, day_id, status, note) VALUES (?, ?, ?, ?)`,
			userID, dayID, string(status), nullString(note),
		)
	case err != nil:
		return err
	default:
		_, err = t.tx.ExecContext(ctx,
			`UPDATE user_day_statuses SET status = ?, note = ? WHERE id = ?`,
			string(status), nullString(note), id,
		)
	}

	if err != nil {
		return fmt.Errorf("upsert status user=%d day=%d: %w", userID, dayID, err)
	}
	return nil
}

// DeleteUserMonth removes every status row the user has in the given month.
// Used for the full-replace write cycle: delete all, then reinsert.
func (t *Tx) DeleteUserMonth(ctx context.Context, userID, monthID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM user_day_statuses
		 WHERE user_id = ? AND day_id IN (SELECT id FROM calendar_days WHERE month_id = ?)`,
		userID, monthID,
	)
	return err
}

// DeleteStatus removes the single status row for (user, day), if any.
func (t *Tx) DeleteStatus(ctx context.Context, userID, dayID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM user_day_statuses WHERE user_id = ? AND day_id = ?`,
		userID, dayID,
	)
	return err
}

// =============================================================================
// COUNTERS
// =============================================================================

// CountRemote counts the user's remote days across the whole year.
func (s *Store) CountRemote(ctx context.Context, userID int64, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 JOIN calendar_months m ON d.month_id = m.id
		 WHERE s.user_id = ? AND s.status = ? AND m.year = ?`,
		userID, string(calendar.StatusRemote), year,
	).Scan(&n)
	return n, err
}

// CountRemoteUntil counts the user's remote days from January 1 of year
// through end inclusive. Returns 0 when end precedes the year start.
func (s *Store) CountRemoteUntil(ctx context.Context, userID int64, year int, end time.Time) (int, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if end.Before(yearStart) {
		return 0, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 WHERE s.user_id = ? AND s.status = ? AND d.date >= ? AND d.date <= ?`,
		userID, string(calendar.StatusRemote),
		yearStart.Format(calendar.ISODate), end.Format(calendar.ISODate),
	).Scan(&n)
	return n, err
}

// CountVacation counts the user's vacation days across the whole year.
func (s *Store) CountVacation(ctx context.Context, userID int64, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 JOIN calendar_months m ON d.month_id = m.id
		 WHERE s.user_id = ? AND s.status = ? AND m.year = ?`,
		userID, string(calendar.StatusVacation), year,
	).Scan(&n)
	return n, err
}

// CountVacationInMonth counts the user's vacation days within one month.
func (s *Store) CountVacationInMonth(ctx context.Context, userID, monthID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 WHERE s.user_id = ? AND s.status = ? AND d.month_id = ?`,
		userID, string(calendar.StatusVacation), monthID,
	).Scan(&n)
	return n, err
}

// VacationDates returns every date the user has status vacation in the
// given year, ascending.
func (s *Store) VacationDates(ctx context.Context, userID int64, year int) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.date
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 JOIN calendar_months m ON d.month_id = m.id
		 WHERE s.user_id = ? AND s.status = ? AND m.year = ?
		 ORDER BY d.date ASC`,
		userID, string(calendar.StatusVacation), year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, err
		}
		d, _ := time.Parse(calendar.ISODate, dateStr)
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// =============================================================================
// MAPS
// =============================================================================

// StatusesForUserMonth returns the user's statuses and notes for a month,
// keyed by ISO date. Days with no row are absent from the map.
func (s *Store) StatusesForUserMonth(ctx context.Context, userID, monthID int64) (map[string]StatusCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.date, s.status, s.note
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 WHERE s.user_id = ? AND d.month_id = ?`,
		userID, monthID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]StatusCell)
	for rows.Next() {
		var dateStr, status string
		var note sql.NullString
		if err := rows.Scan(&dateStr, &status, &note); err != nil {
			return nil, err
		}
		result[dateStr] = StatusCell{Status: calendar.Status(status), Note: note.String}
	}
	return result, rows.Err()
}

// StatusesForMonth returns every user's statuses and notes for a month:
// user id -> ISO date -> cell.
func (s *Store) StatusesForMonth(ctx context.Context, monthID int64) (map[int64]map[string]StatusCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.user_id, d.date, s.status, s.note
		 FROM user_day_statuses s
		 JOIN calendar_days d ON s.day_id = d.id
		 WHERE d.month_id = ?`,
		monthID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]map[string]StatusCell)
	for rows.Next() {
		var userID int64
		var dateStr, status string
		var note sql.NullString
		if err := rows.Scan(&userID, &dateStr, &status, &note); err != nil {
			return nil, err
		}
		if result[userID] == nil {
			result[userID] = make(map[string]StatusCell)
		}
		result[userID][dateStr] = StatusCell{Status: calendar.Status(status), Note: note.String}
	}
	return result, rows.Err()
}

// StatusesForDay returns user id -> status for one day. Users without a
// row default to office; that default is applied by the caller.
func (s *Store) StatusesForDay(ctx context.Context, dayID int64) (map[int64]calendar.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, status FROM user_day_statuses WHERE day_id = ?`,
		dayID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]calendar.Status)
	for rows.Next() {
		var userID int64
		var status string
		if err := rows.Scan(&userID, &status); err != nil {
			return nil, err
		}
		result[userID] = calendar.Status(status)
	}
	return result, rows.Err()
}

// StatusForUserDay returns the stored cell for (user, day), or ErrNotFound.
func (s *Store) StatusForUserDay(ctx context.Context, userID, dayID int64) (StatusCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var status string
	var note sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT status, note FROM user_day_statuses WHERE user_id = ? AND day_id = ?`,
		userID, dayID,
	).Scan(&status, &note)
	if err == sql.ErrNoRows {
		return StatusCell{}, ErrNotFound
	}
	if err != nil {
		return StatusCell{}, err
	}
	return StatusCell{Status: calendar.Status(status), Note: note.String}, nil
}
