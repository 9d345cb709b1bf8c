/*
handlers.go - HTTP API handlers for the office attendance calendar

PURPOSE:
  Exposes the calendar, status store and quota reports via REST. Handles
  HTTP request/response, JSON serialization, and delegates to the store
  and report packages.

ENDPOINTS:
  Health:
    GET    /health

  Departments:
    GET    /departments
    POST   /departments                          (admin)

  Users:
    GET    /users
    POST   /users
    GET    /users/{id}
    PUT    /users/{id}                           (admin)
    DELETE /users/{id}                           (admin)

  Months:
    GET    /months/{year}/{month}                provision and return
    POST   /months/{year}/{month}/lock           (admin)
    POST   /months/{year}/{month}/unlock         (admin)
    PUT    /months/{year}/{month}/days/{date}/holiday   (admin)
    PUT    /months/{year}/{month}/days/{date}/workday   (admin)

  Calendars:
    GET    /users/{id}/calendar/{year}/{month}   (self or admin)
    PUT    /users/{id}/calendar/{year}/{month}   (self or admin; 409 if locked)
    PUT    /users/{id}/calendar/{year}/{month}/{date}/note  (admin)
    GET    /calendar/{year}/{month}              team view
    GET    /who-is-in-office?date=

  Counters:
    GET    /me/remote-counter?year=
    GET    /me/vacation-counter?year=&month=
    GET    /users/{id}/vacation-dates?year=      (self or admin)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: bad date, date outside month, invalid enum, invalid payload
  - 401: missing/unknown X-User-Id
  - 403: role or ownership mismatch
  - 404: unknown user/month/day
  - 409: locked month, duplicate email/department name
  - 500: storage failures (the whole transaction rolls back)

SEE ALSO:
  - dto.go: request/response data structures
  - auth.go: caller resolution and role checks
  - server.go: router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/zhuk18/OfficeCal/calendar"
	"github.com/zhuk18/OfficeCal/report"
	"github.com/zhuk18/OfficeCal/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Validate *validator.Validate
	Log      *logrus.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		Validate: validator.New(),
		Log:      logrus.StandardLogger(),
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

// CreateDepartment creates a department (admin only).
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var req CreateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	dept, err := h.Store.CreateDepartment(r.Context(), req.Name)
	if err != nil {
		h.storeError(w, err, "Failed to create department")
		return
	}

	writeJSON(w, http.StatusCreated, toDepartmentDTO(dept))
}

// ListDepartments returns all departments ordered by name.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		h.storeError(w, err, "Failed to list departments")
		return
	}

	dtos := make([]DepartmentDTO, len(departments))
	for i := range departments {
		dtos[i] = toDepartmentDTO(&departments[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// CreateUser creates a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user := sqlite.User{
		DisplayName:            req.DisplayName,
		Email:                  req.Email,
		Role:                   calendar.RoleEmployee,
		AnnualRemoteLimit:      100,
		AdditionalVacationDays: req.AdditionalVacationDays,
		CarryoverVacationDays:  req.CarryoverVacationDays,
		DepartmentID:           req.DepartmentID,
	}
	if req.Role != "" {
		user.Role = calendar.Role(req.Role)
	}
	if req.AnnualRemoteLimit != nil {
		user.AnnualRemoteLimit = *req.AnnualRemoteLimit
	}
	if req.StartDate != nil {
		start, err := time.Parse(calendar.ISODate, *req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
			return
		}
		user.StartDate = &start
	}

	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		h.storeError(w, err, "Failed to create user")
		return
	}

	if len(req.VacationDays) > 0 {
		if err := h.Store.ReplaceVacationGrants(r.Context(), user.ID, req.VacationDays); err != nil {
			h.storeError(w, err, "Failed to save vacation days")
			return
		}
	}

	dto, err := h.userDTO(r.Context(), &user)
	if err != nil {
		h.storeError(w, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// ListUsers returns all users ordered by display name.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.storeError(w, err, "Failed to list users")
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dto, err := h.userDTO(r.Context(), &users[i])
		if err != nil {
			h.storeError(w, err, "Failed to load user")
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		h.storeError(w, err, "User not found")
		return
	}

	dto, err := h.userDTO(r.Context(), user)
	if err != nil {
		h.storeError(w, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpdateUser applies a partial user mutation (admin only).
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	id, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	upd := sqlite.UserUpdate{
		DisplayName:            req.DisplayName,
		Email:                  req.Email,
		AnnualRemoteLimit:      req.AnnualRemoteLimit,
		AdditionalVacationDays: req.AdditionalVacationDays,
		CarryoverVacationDays:  req.CarryoverVacationDays,
	}
	if req.Role != nil {
		role := calendar.Role(*req.Role)
		upd.Role = &role
	}
	// An empty start_date or a zero department_id clears the field; row
	// ids start at 1, so zero is never a real department.
	if req.StartDate != nil {
		if *req.StartDate == "" {
			upd.ClearStartDate = true
		} else {
			start, err := time.Parse(calendar.ISODate, *req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
				return
			}
			upd.StartDate = &start
		}
	}
	if req.DepartmentID != nil {
		if *req.DepartmentID == 0 {
			upd.ClearDepartmentID = true
		} else {
			upd.DepartmentID = req.DepartmentID
		}
	}

	user, err := h.Store.UpdateUser(r.Context(), id, upd)
	if err != nil {
		h.storeError(w, err, "Failed to update user")
		return
	}

	if req.VacationDays != nil {
		if err := h.Store.ReplaceVacationGrants(r.Context(), user.ID, req.VacationDays); err != nil {
			h.storeError(w, err, "Failed to save vacation days")
			return
		}
	}

	dto, err := h.userDTO(r.Context(), user)
	if err != nil {
		h.storeError(w, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteUser removes a user and its dependent rows (admin only).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	id, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		h.storeError(w, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MONTH HANDLERS
// =============================================================================

// GetMonth provisions and returns a month with all of its days.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}
	writeJSON(w, http.StatusOK, toMonthDTO(month))
}

// LockMonth sets the locked flag (admin only).
func (h *Handler) LockMonth(w http.ResponseWriter, r *http.Request) {
	h.setMonthLocked(w, r, true)
}

// UnlockMonth clears the locked flag (admin only).
func (h *Handler) UnlockMonth(w http.ResponseWriter, r *http.Request) {
	h.setMonthLocked(w, r, false)
}

func (h *Handler) setMonthLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}

	if err := h.Store.SetMonthLocked(r.Context(), month.ID, locked); err != nil {
		h.storeError(w, err, "Failed to update month")
		return
	}

	month.IsLocked = locked
	writeJSON(w, http.StatusOK, toMonthDTO(month))
}

// SetDayHoliday sets the holiday flag on one day (admin only).
func (h *Handler) SetDayHoliday(w http.ResponseWriter, r *http.Request) {
	h.setDayFlag(w, r, h.Store.SetDayHoliday)
}

// SetDayWorkday sets the workday-override flag on one day (admin only).
func (h *Handler) SetDayWorkday(w http.ResponseWriter, r *http.Request) {
	h.setDayFlag(w, r, h.Store.SetDayWorkdayOverride)
}

func (h *Handler) setDayFlag(w http.ResponseWriter, r *http.Request, set func(context.Context, int64, bool) error) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	day, _, ok := h.resolveDay(w, r)
	if !ok {
		return
	}

	var req SetDayFlagRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := set(r.Context(), day.ID, *req.Value); err != nil {
		h.storeError(w, err, "Failed to update day")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// USER CALENDAR HANDLERS
// =============================================================================

// GetUserCalendar returns one user's statuses for a month (self or admin).
func (h *Handler) GetUserCalendar(w http.ResponseWriter, r *http.Request) {
	targetID, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	if h.requireSelfOrAdmin(w, r, targetID) == nil {
		return
	}

	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	target, err := h.Store.GetUser(r.Context(), targetID)
	if err != nil {
		h.storeError(w, err, "User not found")
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}

	h.writeUserCalendar(w, r, target, month)
}

// UpdateUserCalendar replaces one user's whole month of statuses
// (self or admin). Rejected with 409 while the month is locked; any item
// dated outside the month aborts the whole write. Identity is resolved
// first, then the lock wins over the ownership check (409 before 403).
func (h *Handler) UpdateUserCalendar(w http.ResponseWriter, r *http.Request) {
	targetID, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	caller := h.requireUser(w, r)
	if caller == nil {
		return
	}

	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}
	if month.IsLocked {
		writeError(w, http.StatusConflict, "Month locked", nil)
		return
	}

	if caller.ID != targetID && !h.isAdmin(r, caller) {
		writeError(w, http.StatusForbidden, "Access denied", nil)
		return
	}

	target, err := h.Store.GetUser(r.Context(), targetID)
	if err != nil {
		h.storeError(w, err, "User not found")
		return
	}

	var req UpdateUserCalendarRequest
	if !h.decode(w, r, &req) {
		return
	}

	// Resolve every item up front: the replace is all-or-nothing.
	type write struct {
		dayID  int64
		status calendar.Status
		note   string
	}
	writes := make([]write, 0, len(req.Items))
	for _, item := range req.Items {
		date, err := time.Parse(calendar.ISODate, item.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date "+item.Date, err)
			return
		}
		day, found := month.DayByDate(date)
		if !found {
			writeError(w, http.StatusBadRequest, "Invalid date "+item.Date, nil)
			return
		}
		status, valid := calendar.ParseStatus(item.Status)
		if !valid {
			writeError(w, http.StatusBadRequest, "Invalid status "+item.Status, nil)
			return
		}
		writes = append(writes, write{dayID: day.ID, status: status, note: item.Note})
	}

	err = h.Store.WithTx(r.Context(), func(tx *sqlite.Tx) error {
		if err := tx.DeleteUserMonth(r.Context(), target.ID, month.ID); err != nil {
			return err
		}
		for _, wr := range writes {
			if err := tx.UpsertStatus(r.Context(), target.ID, wr.dayID, wr.status, wr.note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.storeError(w, err, "Failed to update calendar")
		return
	}

	h.writeUserCalendar(w, r, target, month)
}

func (h *Handler) writeUserCalendar(w http.ResponseWriter, r *http.Request, target *sqlite.User, month *sqlite.Month) {
	cells, err := h.Store.StatusesForUserMonth(r.Context(), target.ID, month.ID)
	if err != nil {
		h.storeError(w, err, "Failed to load statuses")
		return
	}

	items := make([]DayStatusItem, 0, len(cells))
	for _, day := range month.Days { // days are sorted, so items are too
		date := day.Date.Format(calendar.ISODate)
		if cell, found := cells[date]; found {
			items = append(items, DayStatusItem{Date: date, Status: string(cell.Status), Note: cell.Note})
		}
	}

	dto, err := h.userDTO(r.Context(), target)
	if err != nil {
		h.storeError(w, err, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, UserCalendarDTO{
		User:  dto,
		Month: toMonthDTO(month),
		Items: items,
	})
}

// SetDayNote sets or clears one day's status and note atomically (admin
// only). Status "clear" deletes the row; an unknown status falls back to
// office on create and keeps the prior status on update. A locked month
// rejects the write; admins must unlock first.
func (h *Handler) SetDayNote(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	targetID, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	target, err := h.Store.GetUser(r.Context(), targetID)
	if err != nil {
		h.storeError(w, err, "User not found")
		return
	}

	day, month, ok := h.resolveDay(w, r)
	if !ok {
		return
	}
	if month.IsLocked {
		writeError(w, http.StatusConflict, "Month locked", nil)
		return
	}

	var req DayNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	date := day.Date.Format(calendar.ISODate)

	if req.Status == "clear" {
		err := h.Store.WithTx(r.Context(), func(tx *sqlite.Tx) error {
			return tx.DeleteStatus(r.Context(), target.ID, day.ID)
		})
		if err != nil {
			h.storeError(w, err, "Failed to clear status")
			return
		}
		// No row means the implicit default.
		writeJSON(w, http.StatusOK, DayStatusItem{Date: date, Status: string(calendar.StatusOffice)})
		return
	}

	status, valid := calendar.ParseStatus(req.Status)
	if !valid {
		existing, err := h.Store.StatusForUserDay(r.Context(), target.ID, day.ID)
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
			status = calendar.StatusOffice
		case err != nil:
			h.storeError(w, err, "Failed to load status")
			return
		default:
			status = existing.Status
		}
		h.Log.WithFields(logrus.Fields{
			"user": target.ID,
			"date": date,
		}).Warnf("unknown status %q, using %q", req.Status, status)
	}

	err = h.Store.WithTx(r.Context(), func(tx *sqlite.Tx) error {
		return tx.UpsertStatus(r.Context(), target.ID, day.ID, status, req.Note)
	})
	if err != nil {
		h.storeError(w, err, "Failed to set status")
		return
	}

	writeJSON(w, http.StatusOK, DayStatusItem{Date: date, Status: string(status), Note: req.Note})
}

// =============================================================================
// TEAM VIEW HANDLERS
// =============================================================================

// GetTeamCalendar returns every user's statuses and notes for a month plus
// remaining-remote figures at month start and end.
func (h *Handler) GetTeamCalendar(w http.ResponseWriter, r *http.Request) {
	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.storeError(w, err, "Failed to list users")
		return
	}

	rows, err := report.TeamRows(r.Context(), h.Store, month, users)
	if err != nil {
		h.storeError(w, err, "Failed to build team calendar")
		return
	}

	dtos := make([]TeamRowDTO, 0, len(rows))
	for i := range rows {
		userDTO, err := h.userDTO(r.Context(), &rows[i].User)
		if err != nil {
			h.storeError(w, err, "Failed to load user")
			return
		}

		statuses := make(map[string]string, len(rows[i].Statuses))
		for date, status := range rows[i].Statuses {
			statuses[date] = string(status)
		}

		dtos = append(dtos, TeamRowDTO{
			User:                 userDTO,
			Statuses:             statuses,
			Notes:                rows[i].Notes,
			RemoteRemainingStart: rows[i].RemoteRemainingStart,
			RemoteRemainingEnd:   rows[i].RemoteRemainingEnd,
		})
	}

	writeJSON(w, http.StatusOK, TeamCalendarDTO{Month: toMonthDTO(month), Rows: dtos})
}

// WhoIsInOffice buckets every user by status for one date. Users without a
// status row land in the office bucket.
func (h *Handler) WhoIsInOffice(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing date parameter", nil)
		return
	}
	date, err := time.Parse(calendar.ISODate, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), date.Year(), int(date.Month()))
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return
	}
	day, found := month.DayByDate(date)
	if !found {
		writeError(w, http.StatusNotFound, "Day not found", nil)
		return
	}

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.storeError(w, err, "Failed to list users")
		return
	}
	statuses, err := h.Store.StatusesForDay(r.Context(), day.ID)
	if err != nil {
		h.storeError(w, err, "Failed to load statuses")
		return
	}

	byStatus := make(map[string][]UserDTO, len(calendar.Statuses))
	for _, s := range calendar.Statuses {
		byStatus[string(s)] = []UserDTO{}
	}
	for i := range users {
		status, found := statuses[users[i].ID]
		if !found {
			status = calendar.StatusOffice
		}
		dto, err := h.userDTO(r.Context(), &users[i])
		if err != nil {
			h.storeError(w, err, "Failed to load user")
			return
		}
		byStatus[string(status)] = append(byStatus[string(status)], dto)
	}

	writeJSON(w, http.StatusOK, WhoIsInOfficeDTO{Date: raw, ByStatus: byStatus})
}

// =============================================================================
// COUNTER HANDLERS
// =============================================================================

// GetRemoteCounter reports the caller's remote-day balance for a year.
func (h *Handler) GetRemoteCounter(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	year, ok := h.queryYear(w, r)
	if !ok {
		return
	}

	summary, err := report.RemoteCounter(r.Context(), h.Store, user, year)
	if err != nil {
		h.storeError(w, err, "Failed to compute remote counter")
		return
	}
	writeJSON(w, http.StatusOK, toRemoteCounterDTO(summary))
}

// GetVacationCounter reports the caller's vacation-day balance for a year,
// optionally with the count used within one month.
func (h *Handler) GetVacationCounter(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	year, ok := h.queryYear(w, r)
	if !ok {
		return
	}

	var monthID *int64
	if raw := r.URL.Query().Get("month"); raw != "" {
		monthNum, err := strconv.Atoi(raw)
		if err != nil || monthNum < 1 || monthNum > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month parameter", err)
			return
		}
		month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
		if err != nil {
			h.storeError(w, err, "Failed to provision month")
			return
		}
		monthID = &month.ID
	}

	summary, err := report.VacationCounter(r.Context(), h.Store, user, year, monthID)
	if err != nil {
		h.storeError(w, err, "Failed to compute vacation counter")
		return
	}
	writeJSON(w, http.StatusOK, toVacationCounterDTO(summary))
}

// GetVacationDates lists a user's vacation dates for a year (self or admin).
func (h *Handler) GetVacationDates(w http.ResponseWriter, r *http.Request) {
	targetID, err := urlInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	if h.requireSelfOrAdmin(w, r, targetID) == nil {
		return
	}

	year, ok := h.queryYear(w, r)
	if !ok {
		return
	}

	if _, err := h.Store.GetUser(r.Context(), targetID); err != nil {
		h.storeError(w, err, "User not found")
		return
	}

	dates, err := h.Store.VacationDates(r.Context(), targetID, year)
	if err != nil {
		h.storeError(w, err, "Failed to load vacation dates")
		return
	}

	dtos := make([]string, len(dates))
	for i, d := range dates {
		dtos[i] = d.Format(calendar.ISODate)
	}
	writeJSON(w, http.StatusOK, VacationDatesDTO{Year: year, Dates: dtos})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// yearMonth parses and bounds-checks the {year}/{month} URL segments.
func (h *Handler) yearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := urlInt(r, "year")
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	month, err := urlInt(r, "month")
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, false
	}
	return year, month, true
}

// resolveDay provisions the month from the URL and returns it together with
// the day named by the {date} segment. A well-formed date outside the month
// is a 400.
func (h *Handler) resolveDay(w http.ResponseWriter, r *http.Request) (sqlite.Day, *sqlite.Month, bool) {
	year, monthNum, ok := h.yearMonth(w, r)
	if !ok {
		return sqlite.Day{}, nil, false
	}

	raw := chi.URLParam(r, "date")
	date, err := time.Parse(calendar.ISODate, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return sqlite.Day{}, nil, false
	}

	month, err := h.Store.GetOrCreateMonth(r.Context(), year, monthNum)
	if err != nil {
		h.storeError(w, err, "Failed to provision month")
		return sqlite.Day{}, nil, false
	}

	day, found := month.DayByDate(date)
	if !found {
		writeError(w, http.StatusBadRequest, "Date "+raw+" not in month", nil)
		return sqlite.Day{}, nil, false
	}
	return day, month, true
}

func (h *Handler) queryYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing year parameter", nil)
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
		return 0, false
	}
	return year, true
}

func (h *Handler) userDTO(ctx context.Context, u *sqlite.User) (UserDTO, error) {
	dto := UserDTO{
		ID:                     u.ID,
		DisplayName:            u.DisplayName,
		Email:                  u.Email,
		Role:                   string(u.Role),
		AnnualRemoteLimit:      u.AnnualRemoteLimit,
		AdditionalVacationDays: u.AdditionalVacationDays,
		CarryoverVacationDays:  u.CarryoverVacationDays,
		DepartmentID:           u.DepartmentID,
		VacationDays:           []VacationGrantDTO{},
	}

	if u.StartDate != nil {
		s := u.StartDate.Format(calendar.ISODate)
		dto.StartDate = &s
	}
	if u.DepartmentID != nil {
		dept, err := h.Store.GetDepartment(ctx, *u.DepartmentID)
		if err == nil {
			d := toDepartmentDTO(dept)
			dto.Department = &d
		} else if !errors.Is(err, sqlite.ErrNotFound) {
			return dto, err
		}
	}

	grants, err := h.Store.VacationGrantsFor(ctx, u.ID)
	if err != nil {
		return dto, err
	}
	for _, g := range grants {
		dto.VacationDays = append(dto.VacationDays, VacationGrantDTO{
			VacationType: g.Type,
			DaysPerYear:  g.DaysPerYear,
		})
	}

	return dto, nil
}

func (h *Handler) storeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, sqlite.ErrConflict):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func urlInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, key))
}

func urlInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
