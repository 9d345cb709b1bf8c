/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the store's row types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run the shared
  Validate instance before touching the store. Dates travel as YYYY-MM-DD
  strings and are parsed in the handlers.
*/
package api

import (
	"github.com/zhuk18/OfficeCal/calendar"
	"github.com/zhuk18/OfficeCal/report"
	"github.com/zhuk18/OfficeCal/store/sqlite"
)

// =============================================================================
// DEPARTMENTS
// =============================================================================

// DepartmentDTO represents a department in API responses.
type DepartmentDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateDepartmentRequest is the request to create a department.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// =============================================================================
// USERS
// =============================================================================

// VacationGrantDTO is one additional vacation allotment.
type VacationGrantDTO struct {
	VacationType string `json:"vacation_type"`
	DaysPerYear  int    `json:"days_per_year"`
}

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID                     int64              `json:"id"`
	DisplayName            string             `json:"display_name"`
	Email                  string             `json:"email"`
	Role                   string             `json:"role"`
	AnnualRemoteLimit      int                `json:"annual_remote_limit"`
	StartDate              *string            `json:"start_date,omitempty"`
	AdditionalVacationDays int                `json:"additional_vacation_days"`
	CarryoverVacationDays  int                `json:"carryover_vacation_days"`
	DepartmentID           *int64             `json:"department_id,omitempty"`
	Department             *DepartmentDTO     `json:"department,omitempty"`
	VacationDays           []VacationGrantDTO `json:"vacation_days"`
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	DisplayName            string         `json:"display_name" validate:"required,max=160"`
	Email                  string         `json:"email" validate:"required,email,max=200"`
	Role                   string         `json:"role" validate:"omitempty,oneof=employee manager admin"`
	AnnualRemoteLimit      *int           `json:"annual_remote_limit" validate:"omitempty,min=0"`
	StartDate              *string        `json:"start_date"`
	AdditionalVacationDays int            `json:"additional_vacation_days" validate:"min=0"`
	CarryoverVacationDays  int            `json:"carryover_vacation_days" validate:"min=0"`
	DepartmentID           *int64         `json:"department_id"`
	VacationDays           map[string]int `json:"vacation_days"`
}

// UpdateUserRequest is a partial user mutation; absent fields stay
// unchanged. An empty start_date or a zero department_id clears the field.
type UpdateUserRequest struct {
	DisplayName            *string        `json:"display_name" validate:"omitempty,max=160"`
	Email                  *string        `json:"email" validate:"omitempty,email,max=200"`
	Role                   *string        `json:"role" validate:"omitempty,oneof=employee manager admin"`
	AnnualRemoteLimit      *int           `json:"annual_remote_limit" validate:"omitempty,min=0"`
	StartDate              *string        `json:"start_date"`
	AdditionalVacationDays *int           `json:"additional_vacation_days" validate:"omitempty,min=0"`
	CarryoverVacationDays  *int           `json:"carryover_vacation_days" validate:"omitempty,min=0"`
	DepartmentID           *int64         `json:"department_id"`
	VacationDays           map[string]int `json:"vacation_days"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// DayDTO represents one calendar day.
type DayDTO struct {
	ID                int64  `json:"id"`
	Date              string `json:"date"`
	WeekdayName       string `json:"weekday_name"`
	IsWeekend         bool   `json:"is_weekend"`
	IsHoliday         bool   `json:"is_holiday"`
	IsWorkdayOverride bool   `json:"is_workday_override"`
}

// MonthDTO represents a provisioned month with all of its days.
type MonthDTO struct {
	ID       int64    `json:"id"`
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	IsLocked bool     `json:"is_locked"`
	Days     []DayDTO `json:"days"`
}

// DayStatusItem is one (date, status, note) entry in a user calendar.
type DayStatusItem struct {
	Date   string `json:"date" validate:"required"`
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// UserCalendarDTO is one user's calendar for a month.
type UserCalendarDTO struct {
	User  UserDTO         `json:"user"`
	Month MonthDTO        `json:"month"`
	Items []DayStatusItem `json:"items"`
}

// UpdateUserCalendarRequest replaces a user's whole month of statuses.
type UpdateUserCalendarRequest struct {
	Items []DayStatusItem `json:"items" validate:"dive"`
}

// SetDayFlagRequest carries the value for a day's admin flag.
type SetDayFlagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// DayNoteRequest sets or clears one day's status and note.
// Status "clear" deletes the row.
type DayNoteRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// =============================================================================
// REPORTS
// =============================================================================

// TeamRowDTO is one user's line in the team calendar.
type TeamRowDTO struct {
	User                 UserDTO           `json:"user"`
	Statuses             map[string]string `json:"statuses"`
	Notes                map[string]string `json:"notes"`
	RemoteRemainingStart int               `json:"remote_remaining_start"`
	RemoteRemainingEnd   int               `json:"remote_remaining_end"`
}

// TeamCalendarDTO is the whole-team month view.
type TeamCalendarDTO struct {
	Month MonthDTO     `json:"month"`
	Rows  []TeamRowDTO `json:"rows"`
}

// WhoIsInOfficeDTO buckets every user by status for one date.
type WhoIsInOfficeDTO struct {
	Date     string               `json:"date"`
	ByStatus map[string][]UserDTO `json:"by_status"`
}

// RemoteCounterDTO is a user's remote-day balance for a year.
type RemoteCounterDTO struct {
	Year      int `json:"year"`
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// VacationCounterDTO is a user's vacation-day balance for a year.
type VacationCounterDTO struct {
	Year        int  `json:"year"`
	Allowed     int  `json:"allowed"`
	Used        int  `json:"used"`
	UsedInMonth *int `json:"used_in_month,omitempty"`
	Remaining   int  `json:"remaining"`
}

// VacationDatesDTO lists a user's vacation dates for a year, ascending.
type VacationDatesDTO struct {
	Year  int      `json:"year"`
	Dates []string `json:"dates"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDepartmentDTO(d *sqlite.Department) DepartmentDTO {
	return DepartmentDTO{ID: d.ID, Name: d.Name}
}

func toDayDTO(d sqlite.Day) DayDTO {
	return DayDTO{
		ID:                d.ID,
		Date:              d.Date.Format(calendar.ISODate),
		WeekdayName:       d.WeekdayName,
		IsWeekend:         d.IsWeekend,
		IsHoliday:         d.IsHoliday,
		IsWorkdayOverride: d.IsWorkdayOverride,
	}
}

func toMonthDTO(m *sqlite.Month) MonthDTO {
	days := make([]DayDTO, len(m.Days))
	for i, d := range m.Days {
		days[i] = toDayDTO(d)
	}
	return MonthDTO{ID: m.ID, Year: m.Year, Month: m.Month, IsLocked: m.IsLocked, Days: days}
}

func toRemoteCounterDTO(s report.RemoteSummary) RemoteCounterDTO {
	return RemoteCounterDTO{Year: s.Year, Used: s.Used, Limit: s.Limit, Remaining: s.Remaining}
}

func toVacationCounterDTO(s report.VacationSummary) VacationCounterDTO {
	return VacationCounterDTO{
		Year:        s.Year,
		Allowed:     s.Allowed,
		Used:        s.Used,
		UsedInMonth: s.UsedInMonth,
		Remaining:   s.Remaining,
	}
}
