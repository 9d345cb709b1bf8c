/*
sqlite_test.go - Store tests against an in-memory database

Tests for:
- Month provisioning (idempotence, day counts, leap years)
- Status writes (upsert, full-month replace, cascade delete)
- Counting queries backing the quota reports
- User and department constraints
*/
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuk18/OfficeCal/calendar"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, store *Store, name, email string) *User {
	t.Helper()
	u := &User{DisplayName: name, Email: email, Role: calendar.RoleEmployee, AnnualRemoteLimit: 100}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func setStatus(t *testing.T, store *Store, userID, dayID int64, status calendar.Status, note string) {
	t.Helper()
	err := store.WithTx(context.Background(), func(tx *Tx) error {
		return tx.UpsertStatus(context.Background(), userID, dayID, status, note)
	})
	require.NoError(t, err)
}

// =============================================================================
// MONTH PROVISIONING
// =============================================================================

func TestGetOrCreateMonth_ProvisionsAllDays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		year, month, days int
	}{
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2024, 1, 31},
		{2024, 4, 30},
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // divisible by 100 but not 400
	}
	for _, c := range cases {
		month, err := store.GetOrCreateMonth(ctx, c.year, c.month)
		require.NoError(t, err)
		assert.Len(t, month.Days, c.days, "%04d-%02d", c.year, c.month)
		assert.Equal(t, c.year, month.Year)
		assert.Equal(t, c.month, month.Month)
		assert.False(t, month.IsLocked)
	}
}

func TestGetOrCreateMonth_Idempotent(t *testing.T) {
	// GIVEN: A provisioned month
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreateMonth(ctx, 2024, 6)
	require.NoError(t, err)

	// WHEN: Provisioning the same month again
	second, err := store.GetOrCreateMonth(ctx, 2024, 6)
	require.NoError(t, err)

	// THEN: Same row, same days, no duplicates
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Days, 30)
}

func TestGetOrCreateMonth_DaysSortedWithWeekdays(t *testing.T) {
	store := newTestStore(t)

	month, err := store.GetOrCreateMonth(context.Background(), 2024, 3)
	require.NoError(t, err)

	require.Len(t, month.Days, 31)
	assert.Equal(t, "2024-03-01", month.Days[0].Date.Format(calendar.ISODate))
	assert.Equal(t, "2024-03-31", month.Days[30].Date.Format(calendar.ISODate))
	assert.Equal(t, "Fri", month.Days[0].WeekdayName)
	assert.False(t, month.Days[0].IsWeekend)
	// 2024-03-02 is a Saturday.
	assert.Equal(t, "Sat", month.Days[1].WeekdayName)
	assert.True(t, month.Days[1].IsWeekend)

	for i := 1; i < len(month.Days); i++ {
		assert.True(t, month.Days[i-1].Date.Before(month.Days[i].Date))
	}
}

func TestSetMonthLocked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	month, err := store.GetOrCreateMonth(ctx, 2024, 5)
	require.NoError(t, err)

	require.NoError(t, store.SetMonthLocked(ctx, month.ID, true))
	reread, err := store.GetMonth(ctx, 2024, 5)
	require.NoError(t, err)
	assert.True(t, reread.IsLocked)

	require.NoError(t, store.SetMonthLocked(ctx, month.ID, false))
	reread, err = store.GetMonth(ctx, 2024, 5)
	require.NoError(t, err)
	assert.False(t, reread.IsLocked)
}

func TestGetMonth_NotProvisioned(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetMonth(context.Background(), 2024, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetDayFlags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	month, err := store.GetOrCreateMonth(ctx, 2024, 5)
	require.NoError(t, err)
	day := month.Days[0]

	require.NoError(t, store.SetDayHoliday(ctx, day.ID, true))
	require.NoError(t, store.SetDayWorkdayOverride(ctx, day.ID, true))

	reread, err := store.GetMonth(ctx, 2024, 5)
	require.NoError(t, err)
	assert.True(t, reread.Days[0].IsHoliday)
	assert.True(t, reread.Days[0].IsWorkdayOverride)
}

// =============================================================================
// STATUS WRITES
// =============================================================================

func TestUpsertStatus_TwiceLeavesOneRow(t *testing.T) {
	// GIVEN: A user with a remote status on one day
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	month, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	day := month.Days[0]

	setStatus(t, store, user.ID, day.ID, calendar.StatusRemote, "")

	// WHEN: Upserting a different status for the same day
	setStatus(t, store, user.ID, day.ID, calendar.StatusVacation, "spring break")

	// THEN: One row remains holding the latest status and note
	cells, err := store.StatusesForUserMonth(ctx, user.ID, month.ID)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	cell := cells["2024-04-01"]
	assert.Equal(t, calendar.StatusVacation, cell.Status)
	assert.Equal(t, "spring break", cell.Note)
}

func TestDeleteUserMonth_ReplaceRoundTrip(t *testing.T) {
	// GIVEN: Three status rows in one month
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	month, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		setStatus(t, store, user.ID, month.Days[i].ID, calendar.StatusRemote, "")
	}

	// WHEN: Replacing the whole month with two new rows atomically
	err = store.WithTx(ctx, func(tx *Tx) error {
		if err := tx.DeleteUserMonth(ctx, user.ID, month.ID); err != nil {
			return err
		}
		if err := tx.UpsertStatus(ctx, user.ID, month.Days[10].ID, calendar.StatusTrip, "conference"); err != nil {
			return err
		}
		return tx.UpsertStatus(ctx, user.ID, month.Days[11].ID, calendar.StatusNight, "")
	})
	require.NoError(t, err)

	// THEN: Only the two new rows exist
	cells, err := store.StatusesForUserMonth(ctx, user.ID, month.ID)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, calendar.StatusTrip, cells["2024-04-11"].Status)
	assert.Equal(t, calendar.StatusNight, cells["2024-04-12"].Status)
}

func TestDeleteUserMonth_OtherMonthUntouched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	april, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	may, err := store.GetOrCreateMonth(ctx, 2024, 5)
	require.NoError(t, err)

	setStatus(t, store, user.ID, april.Days[0].ID, calendar.StatusRemote, "")
	setStatus(t, store, user.ID, may.Days[0].ID, calendar.StatusRemote, "")

	err = store.WithTx(ctx, func(tx *Tx) error {
		return tx.DeleteUserMonth(ctx, user.ID, april.ID)
	})
	require.NoError(t, err)

	cells, err := store.StatusesForUserMonth(ctx, user.ID, may.ID)
	require.NoError(t, err)
	assert.Len(t, cells, 1)
}

func TestDeleteStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	month, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	day := month.Days[0]

	setStatus(t, store, user.ID, day.ID, calendar.StatusRemote, "")

	err = store.WithTx(ctx, func(tx *Tx) error {
		return tx.DeleteStatus(ctx, user.ID, day.ID)
	})
	require.NoError(t, err)

	_, err = store.StatusForUserDay(ctx, user.ID, day.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUser_CascadesStatuses(t *testing.T) {
	// GIVEN: A user with statuses
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	month, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	setStatus(t, store, user.ID, month.Days[0].ID, calendar.StatusRemote, "")
	require.NoError(t, store.ReplaceVacationGrants(ctx, user.ID, map[string]int{"study": 5}))

	// WHEN: Deleting the user
	require.NoError(t, store.DeleteUser(ctx, user.ID))

	// THEN: Dependent rows are gone
	statuses, err := store.StatusesForDay(ctx, month.Days[0].ID)
	require.NoError(t, err)
	assert.Empty(t, statuses)
	grants, err := store.VacationGrantsFor(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

// =============================================================================
// COUNTING QUERIES
// =============================================================================

func TestCountRemote_ByYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	april, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	dec23, err := store.GetOrCreateMonth(ctx, 2023, 12)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		setStatus(t, store, user.ID, april.Days[i].ID, calendar.StatusRemote, "")
	}
	setStatus(t, store, user.ID, april.Days[10].ID, calendar.StatusVacation, "")
	setStatus(t, store, user.ID, dec23.Days[0].ID, calendar.StatusRemote, "")

	count, err := store.CountRemote(ctx, user.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = store.CountRemote(ctx, user.ID, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountRemoteUntil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	april, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)

	// Remote on the 1st, 5th and 20th.
	for _, i := range []int{0, 4, 19} {
		setStatus(t, store, user.ID, april.Days[i].ID, calendar.StatusRemote, "")
	}

	count, err := store.CountRemoteUntil(ctx, user.ID, 2024, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// End before January 1st means nothing counted yet.
	count, err = store.CountRemoteUntil(ctx, user.ID, 2024, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVacationCountsAndDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")
	april, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	june, err := store.GetOrCreateMonth(ctx, 2024, 6)
	require.NoError(t, err)

	// Vacation out of order to check result ordering.
	setStatus(t, store, user.ID, june.Days[2].ID, calendar.StatusVacation, "")
	setStatus(t, store, user.ID, april.Days[14].ID, calendar.StatusVacation, "")
	setStatus(t, store, user.ID, april.Days[15].ID, calendar.StatusVacation, "")
	setStatus(t, store, user.ID, april.Days[0].ID, calendar.StatusRemote, "")

	count, err := store.CountVacation(ctx, user.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = store.CountVacationInMonth(ctx, user.ID, april.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	dates, err := store.VacationDates(ctx, user.ID, 2024)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-04-15", dates[0].Format(calendar.ISODate))
	assert.Equal(t, "2024-04-16", dates[1].Format(calendar.ISODate))
	assert.Equal(t, "2024-06-03", dates[2].Format(calendar.ISODate))
}

func TestStatusesForMonthAndDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, store, "Alice", "alice@example.com")
	bob := mustUser(t, store, "Bob", "bob@example.com")
	month, err := store.GetOrCreateMonth(ctx, 2024, 4)
	require.NoError(t, err)
	day := month.Days[0]

	setStatus(t, store, alice.ID, day.ID, calendar.StatusRemote, "wfh")
	setStatus(t, store, bob.ID, day.ID, calendar.StatusTrip, "")

	byUser, err := store.StatusesForMonth(ctx, month.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, calendar.StatusRemote, byUser[alice.ID]["2024-04-01"].Status)
	assert.Equal(t, "wfh", byUser[alice.ID]["2024-04-01"].Note)

	byDay, err := store.StatusesForDay(ctx, day.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.StatusTrip, byDay[bob.ID])
}

// =============================================================================
// USERS AND DEPARTMENTS
// =============================================================================

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustUser(t, store, "Alice", "alice@example.com")

	dup := &User{DisplayName: "Other Alice", Email: "alice@example.com", Role: calendar.RoleEmployee}
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateUser_PartialMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")

	limit := 42
	updated, err := store.UpdateUser(ctx, user.ID, UserUpdate{AnnualRemoteLimit: &limit})
	require.NoError(t, err)

	assert.Equal(t, 42, updated.AnnualRemoteLimit)
	assert.Equal(t, "Alice", updated.DisplayName)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUpdateUser_ClearFields(t *testing.T) {
	// GIVEN: A user with a start date and a department
	store := newTestStore(t)
	ctx := context.Background()

	dept, err := store.CreateDepartment(ctx, "HR")
	require.NoError(t, err)

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	user := &User{
		DisplayName:       "Alice",
		Email:             "alice@example.com",
		Role:              calendar.RoleEmployee,
		AnnualRemoteLimit: 100,
		StartDate:         &start,
		DepartmentID:      &dept.ID,
	}
	require.NoError(t, store.CreateUser(ctx, user))

	// WHEN: Clearing both via the explicit flags
	updated, err := store.UpdateUser(ctx, user.ID, UserUpdate{
		ClearStartDate:    true,
		ClearDepartmentID: true,
	})
	require.NoError(t, err)

	// THEN: Both columns are null; the rest is unchanged
	assert.Nil(t, updated.StartDate)
	assert.Nil(t, updated.DepartmentID)
	assert.Equal(t, "Alice", updated.DisplayName)

	reread, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, reread.StartDate)
	assert.Nil(t, reread.DepartmentID)
}

func TestDeleteUser_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteUser(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDepartments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hr, err := store.CreateDepartment(ctx, "HR")
	require.NoError(t, err)
	_, err = store.CreateDepartment(ctx, "Development")
	require.NoError(t, err)

	_, err = store.CreateDepartment(ctx, "HR")
	assert.ErrorIs(t, err, ErrConflict)

	all, err := store.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Development", all[0].Name)

	byName, err := store.GetDepartmentByName(ctx, "HR")
	require.NoError(t, err)
	assert.Equal(t, hr.ID, byName.ID)
}

func TestReplaceVacationGrants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := mustUser(t, store, "Alice", "alice@example.com")

	require.NoError(t, store.ReplaceVacationGrants(ctx, user.ID, map[string]int{"study": 5, "parental": 10}))
	require.NoError(t, store.ReplaceVacationGrants(ctx, user.ID, map[string]int{"study": 3}))

	grants, err := store.VacationGrantsFor(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "study", grants[0].Type)
	assert.Equal(t, 3, grants[0].DaysPerYear)
}
