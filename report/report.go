/*
Package report computes remote-day and vacation-day balances.

PURPOSE:
  Combines the status-store counters with the accrual calculator into the
  figures the API returns: remote-counter, vacation-counter, per-user
  vacation dates and the team-calendar rows with remaining-remote deltas.

CUTOFF DATES:
  A "remaining at cutoff" figure is the user's annual remote limit minus
  the remote days counted through that date. The team calendar reports two
  such figures per user: remaining at month start (cutoff = day before the
  month's first date) and remaining at month end, which uses the total-year
  count. Remote remaining is not floored at zero; vacation remaining is.

SEE ALSO:
  - calendar/accrual.go: the accrual rule
  - store/sqlite/statuses.go: the counters this builds on
*/
package report

import (
	"context"
	"time"

	"github.com/zhuk18/OfficeCal/calendar"
	"github.com/zhuk18/OfficeCal/store/sqlite"
)

// Counter is the slice of the store the report layer needs.
type Counter interface {
	CountRemote(ctx context.Context, userID int64, year int) (int, error)
	CountRemoteUntil(ctx context.Context, userID int64, year int, end time.Time) (int, error)
	CountVacation(ctx context.Context, userID int64, year int) (int, error)
	CountVacationInMonth(ctx context.Context, userID, monthID int64) (int, error)
	VacationDates(ctx context.Context, userID int64, year int) ([]time.Time, error)
	StatusesForMonth(ctx context.Context, monthID int64) (map[int64]map[string]sqlite.StatusCell, error)
}

// RemoteSummary is a user's remote-day balance for one year.
type RemoteSummary struct {
	Year      int
	Used      int
	Limit     int
	Remaining int
}

// VacationSummary is a user's vacation-day balance for one year.
type VacationSummary struct {
	Year        int
	Allowed     int
	Used        int
	UsedInMonth *int // set only when a month filter was given
	Remaining   int
}

// TeamRow is one user's line in the team calendar.
type TeamRow struct {
	User                 sqlite.User
	Statuses             map[string]calendar.Status
	Notes                map[string]string
	RemoteRemainingStart int
	RemoteRemainingEnd   int
}

// RemoteCounter reports remote days used and remaining for the year.
func RemoteCounter(ctx context.Context, st Counter, user *sqlite.User, year int) (RemoteSummary, error) {
	used, err := st.CountRemote(ctx, user.ID, year)
	if err != nil {
		return RemoteSummary{}, err
	}
	return RemoteSummary{
		Year:      year,
		Used:      used,
		Limit:     user.AnnualRemoteLimit,
		Remaining: user.AnnualRemoteLimit - used,
	}, nil
}

// VacationCounter reports vacation days allowed, used and remaining for the
// year. Allowed is the full-year accrual plus manual and carryover grants;
// remaining never goes below zero. When monthID is non-nil the summary also
// carries the count used within that month.
func VacationCounter(ctx context.Context, st Counter, user *sqlite.User, year int, monthID *int64) (VacationSummary, error) {
	allowed := calendar.AccruedVacation(user.StartDate, year, 12) +
		user.AdditionalVacationDays + user.CarryoverVacationDays

	used, err := st.CountVacation(ctx, user.ID, year)
	if err != nil {
		return VacationSummary{}, err
	}

	remaining := allowed - used
	if remaining < 0 {
		remaining = 0
	}

	summary := VacationSummary{
		Year:      year,
		Allowed:   allowed,
		Used:      used,
		Remaining: remaining,
	}

	if monthID != nil {
		inMonth, err := st.CountVacationInMonth(ctx, user.ID, *monthID)
		if err != nil {
			return VacationSummary{}, err
		}
		summary.UsedInMonth = &inMonth
	}

	return summary, nil
}

// TeamRows builds the team-calendar rows for a provisioned month: per user,
// the status and note maps plus remaining-remote at month start and end.
func TeamRows(ctx context.Context, st Counter, month *sqlite.Month, users []sqlite.User) ([]TeamRow, error) {
	cells, err := st.StatusesForMonth(ctx, month.ID)
	if err != nil {
		return nil, err
	}

	dayBeforeStart := month.FirstDate().AddDate(0, 0, -1)

	rows := make([]TeamRow, 0, len(users))
	for _, user := range users {
		usedBefore, err := st.CountRemoteUntil(ctx, user.ID, month.Year, dayBeforeStart)
		if err != nil {
			return nil, err
		}
		usedYear, err := st.CountRemote(ctx, user.ID, month.Year)
		if err != nil {
			return nil, err
		}

		statuses := make(map[string]calendar.Status)
		notes := make(map[string]string)
		for date, cell := range cells[user.ID] {
			statuses[date] = cell.Status
			if cell.Note != "" {
				notes[date] = cell.Note
			}
		}

		rows = append(rows, TeamRow{
			User:                 user,
			Statuses:             statuses,
			Notes:                notes,
			RemoteRemainingStart: user.AnnualRemoteLimit - usedBefore,
			RemoteRemainingEnd:   user.AnnualRemoteLimit - usedYear,
		})
	}

	return rows, nil
}
