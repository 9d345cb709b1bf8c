/*
months.go - Calendar month provisioning and day flags

PURPOSE:
  Get-or-create of CalendarMonth rows together with their full set of
  CalendarDay rows. A month is never partially populated: either the whole
  batch of days commits with the month, or nothing does.

RACE HANDLING:
  Two requests may provision the same (year, month) at once. The loser hits
  the UNIQUE(year, month) constraint, rolls back, and re-reads the winner's
  row. The retry happens exactly once; if the re-read still finds nothing
  the underlying insert error is propagated - that state would mean the
  constraint fired without a surviving row, which is an invariant violation.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zhuk18/OfficeCal/calendar"
)

// Month is a provisioned calendar month with all of its days attached.
type Month struct {
	ID       int64
	Year     int
	Month    int
	IsLocked bool
	Days     []Day
}

// Day is a single calendar day. Only the two admin flags ever change after
// provisioning.
type Day struct {
	ID                int64
	MonthID           int64
	Date              time.Time
	WeekdayName       string
	IsWeekend         bool
	IsHoliday         bool
	IsWorkdayOverride bool
}

// DayByDate returns the day with the given date, if the month contains it.
func (m *Month) DayByDate(date time.Time) (Day, bool) {
	want := date.Format(calendar.ISODate)
	for _, d := range m.Days {
		if d.Date.Format(calendar.ISODate) == want {
			return d, true
		}
	}
	return Day{}, false
}

// FirstDate and LastDate bound the month. Days are kept sorted by date.
func (m *Month) FirstDate() time.Time { return m.Days[0].Date }
func (m *Month) LastDate() time.Time  { return m.Days[len(m.Days)-1].Date }

// GetOrCreateMonth returns the month for (year, month), provisioning it and
// all of its days on first reference. Repeated calls always yield the same
// month id and day set.
func (s *Store) GetOrCreateMonth(ctx context.Context, year, month int) (*Month, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.getMonth(ctx, year, month)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO calendar_months (year, month, is_locked) VALUES (?, ?, 0)`,
		year, month,
	)
	if err != nil {
		tx.Rollback()
		if isUniqueConstraintError(err) {
			// A concurrent creator won the race; its row is authoritative.
			if existing, rerr := s.getMonth(ctx, year, month); rerr == nil {
				return existing, nil
			}
			// Constraint fired but no row survives: invariant violation,
			// surface the original storage error.
		}
		return nil, fmt.Errorf("create month %04d-%02d: %w", year, month, err)
	}

	monthID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, day := range calendar.MonthDays(year, time.Month(month)) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO calendar_days (month_id, date, weekday_name, is_weekend, is_holiday, is_workday_override)
			 VALUES (?, ?, ?, ?, 0, 0)`,
			monthID, day.Format(calendar.ISODate), calendar.WeekdayName(day), calendar.IsWeekend(day),
		)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("create day %s: %w", day.Format(calendar.ISODate), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit month %04d-%02d: %w", year, month, err)
	}

	return s.getMonth(ctx, year, month)
}

// GetMonth returns an already-provisioned month, or ErrNotFound.
func (s *Store) GetMonth(ctx context.Context, year, month int) (*Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMonth(ctx, year, month)
}

func (s *Store) getMonth(ctx context.Context, year, month int) (*Month, error) {
	var m Month
	err := s.db.QueryRowContext(ctx,
		`SELECT id, year, month, is_locked FROM calendar_months WHERE year = ? AND month = ?`,
		year, month,
	).Scan(&m.ID, &m.Year, &m.Month, &m.IsLocked)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, month_id, date, weekday_name, is_weekend, is_holiday, is_workday_override
		 FROM calendar_days WHERE month_id = ? ORDER BY date ASC`,
		m.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d Day
		var dateStr string
		if err := rows.Scan(&d.ID, &d.MonthID, &dateStr, &d.WeekdayName,
			&d.IsWeekend, &d.IsHoliday, &d.IsWorkdayOverride); err != nil {
			return nil, err
		}
		d.Date, _ = time.Parse(calendar.ISODate, dateStr)
		m.Days = append(m.Days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &m, nil
}

// SetMonthLocked toggles the locked flag on a month.
func (s *Store) SetMonthLocked(ctx context.Context, monthID int64, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE calendar_months SET is_locked = ? WHERE id = ?`, locked, monthID)
	return err
}

// SetDayHoliday sets the admin holiday flag on a day.
func (s *Store) SetDayHoliday(ctx context.Context, dayID int64, holiday bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE calendar_days SET is_holiday = ? WHERE id = ?`, holiday, dayID)
	return err
}

// SetDayWorkdayOverride sets the admin workday-override flag on a day.
func (s *Store) SetDayWorkdayOverride(ctx context.Context, dayID int64, override bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE calendar_days SET is_workday_override = ? WHERE id = ?`, override, dayID)
	return err
}
