/*
users.go - User, department and vacation-day persistence

PURPOSE:
  Plain CRUD over users and departments plus the user_vacation_days
  grants. Duplicate emails and department names surface as ErrConflict;
  deleting a user cascades to its statuses and vacation rows at the
  database level.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zhuk18/OfficeCal/calendar"
)

// User is an account row.
type User struct {
	ID                     int64
	DisplayName            string
	Email                  string
	Role                   calendar.Role
	AnnualRemoteLimit      int
	StartDate              *time.Time
	AdditionalVacationDays int
	CarryoverVacationDays  int
	DepartmentID           *int64
}

// Department is an org unit. Users reference it loosely.
type Department struct {
	ID   int64
	Name string
}

// VacationGrant is one additional vacation allotment for a user.
type VacationGrant struct {
	Type        string
	DaysPerYear int
}

// UserUpdate carries a partial user mutation; nil fields are left unchanged.
// The Clear flags null the corresponding column and win over the pointer
// fields, since nil pointers cannot distinguish "unchanged" from "remove".
type UserUpdate struct {
	DisplayName            *string
	Email                  *string
	Role                   *calendar.Role
	AnnualRemoteLimit      *int
	StartDate              *time.Time
	ClearStartDate         bool
	AdditionalVacationDays *int
	CarryoverVacationDays  *int
	DepartmentID           *int64
	ClearDepartmentID      bool
}

const userColumns = `id, display_name, email, role, annual_remote_limit, start_date,
	additional_vacation_days, carryover_vacation_days, department_id`

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a new user and fills in its id.
// A duplicate email returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var startDate sql.NullString
	if u.StartDate != nil {
		startDate = sql.NullString{String: u.StartDate.Format(calendar.ISODate), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (display_name, email, role, annual_remote_limit, start_date,
			additional_vacation_days, carryover_vacation_days, department_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.DisplayName, u.Email, string(u.Role), u.AnnualRemoteLimit, startDate,
		u.AdditionalVacationDays, u.CarryoverVacationDays, u.DepartmentID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("email %q: %w", u.Email, ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	return err
}

// GetUser returns the user with the given id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns all users ordered by display name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial mutation and returns the updated row.
func (s *Store) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.AnnualRemoteLimit != nil {
		u.AnnualRemoteLimit = *upd.AnnualRemoteLimit
	}
	if upd.StartDate != nil {
		u.StartDate = upd.StartDate
	}
	if upd.ClearStartDate {
		u.StartDate = nil
	}
	if upd.AdditionalVacationDays != nil {
		u.AdditionalVacationDays = *upd.AdditionalVacationDays
	}
	if upd.CarryoverVacationDays != nil {
		u.CarryoverVacationDays = *upd.CarryoverVacationDays
	}
	if upd.DepartmentID != nil {
		u.DepartmentID = upd.DepartmentID
	}
	if upd.ClearDepartmentID {
		u.DepartmentID = nil
	}

	var startDate sql.NullString
	if u.StartDate != nil {
		startDate = sql.NullString{String: u.StartDate.Format(calendar.ISODate), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, email = ?, role = ?, annual_remote_limit = ?,
			start_date = ?, additional_vacation_days = ?, carryover_vacation_days = ?,
			department_id = ?
		 WHERE id = ?`,
		u.DisplayName, u.Email, string(u.Role), u.AnnualRemoteLimit, startDate,
		u.AdditionalVacationDays, u.CarryoverVacationDays, u.DepartmentID, id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("email %q: %w", u.Email, ErrConflict)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	return u, nil
}

// DeleteUser removes a user; statuses and vacation grants cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of users. The API uses this for the
// first-user-is-admin bootstrap rule.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	var role string
	var startDate sql.NullString
	var departmentID sql.NullInt64

	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &role, &u.AnnualRemoteLimit,
		&startDate, &u.AdditionalVacationDays, &u.CarryoverVacationDays, &departmentID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Role = calendar.Role(role)
	if startDate.Valid {
		t, _ := time.Parse(calendar.ISODate, startDate.String)
		u.StartDate = &t
	}
	if departmentID.Valid {
		u.DepartmentID = &departmentID.Int64
	}
	return &u, nil
}

// =============================================================================
// VACATION GRANTS
// =============================================================================

// ReplaceVacationGrants swaps the user's whole set of vacation grants.
func (s *Store) ReplaceVacationGrants(ctx context.Context, userID int64, grants map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_vacation_days WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for typ, days := range grants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_vacation_days (user_id, vacation_type, days_per_year) VALUES (?, ?, ?)`,
			userID, typ, days); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// VacationGrantsFor returns the user's vacation grants ordered by type.
func (s *Store) VacationGrantsFor(ctx context.Context, userID int64) ([]VacationGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT vacation_type, days_per_year FROM user_vacation_days
		 WHERE user_id = ? ORDER BY vacation_type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []VacationGrant
	for rows.Next() {
		var g VacationGrant
		if err := rows.Scan(&g.Type, &g.DaysPerYear); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

// CreateDepartment inserts a department; a duplicate name returns ErrConflict.
func (s *Store) CreateDepartment(ctx context.Context, name string) (*Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO departments (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("department %q: %w", name, ErrConflict)
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Department{ID: id, Name: name}, nil
}

// GetDepartment returns the department with the given id, or ErrNotFound.
func (s *Store) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d Department
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM departments WHERE id = ?`, id).Scan(&d.ID, &d.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDepartments returns all departments ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetDepartmentByName returns the department with the given name, or ErrNotFound.
func (s *Store) GetDepartmentByName(ctx context.Context, name string) (*Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d Department
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM departments WHERE name = ?`, name).Scan(&d.ID, &d.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
