/*
Package calendar holds the pure date and business-rule logic for OfficeCal.

PURPOSE:
  Everything in this package is computable without a database: enumerating
  the days of a month, classifying weekends, deriving weekday labels, and
  the vacation accrual rule. The store and API layers build on these.

KEY CONCEPTS:
  - Status: the single classification of a user's day. A missing status row
    always means StatusOffice; that default is applied in the read paths,
    never stored.
  - Role: gates authorization in the API layer (employee/manager/admin).
  - Accrual: vacation days earned up to a point in time (see accrual.go).

SEE ALSO:
  - accrual.go: vacation accrual calculator
  - store/sqlite: persistence for months, days and statuses
*/
package calendar

import "time"

// =============================================================================
// DAY STATUS
// =============================================================================

// Status classifies a user's day.
type Status string

const (
	StatusOffice   Status = "office"
	StatusRemote   Status = "remote"
	StatusVacation Status = "vacation"
	StatusNight    Status = "night"
	StatusTrip     Status = "trip"
	StatusAbsent   Status = "absent"
)

// Statuses lists every valid status, in display order.
var Statuses = []Status{
	StatusOffice, StatusRemote, StatusVacation,
	StatusNight, StatusTrip, StatusAbsent,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOffice, StatusRemote, StatusVacation, StatusNight, StatusTrip, StatusAbsent:
		return true
	}
	return false
}

// ParseStatus returns the status for raw, or ok=false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

// =============================================================================
// ROLES
// =============================================================================

// Role gates what a user may do through the API.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysIn returns the number of calendar days in (year, month).
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDays enumerates every date of (year, month), first through last.
func MonthDays(year int, month time.Month) []time.Time {
	n := DaysIn(year, month)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
	}
	return days
}

// WeekdayName returns the three-letter weekday abbreviation (Mon..Sun).
func WeekdayName(day time.Time) string {
	return day.Format("Mon")
}

// IsWeekend reports whether day falls on Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateOnly truncates t to midnight UTC so dates compare cleanly.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ISODate is the wire and storage format for dates.
const ISODate = "2006-01-02"
