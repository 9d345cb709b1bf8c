package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zhuk18/OfficeCal/calendar"
)

func TestMonthDays_Lengths(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.January, 31},
		{2024, time.April, 30},
		{2000, time.February, 29}, // divisible by 400
		{1900, time.February, 28}, // divisible by 100, not 400
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		days := calendar.MonthDays(tt.year, tt.month)
		assert.Len(t, days, tt.want, "%d-%02d", tt.year, tt.month)
		assert.Equal(t, tt.want, calendar.DaysIn(tt.year, tt.month))

		// First and last dates bound the month.
		assert.Equal(t, time.Date(tt.year, tt.month, 1, 0, 0, 0, 0, time.UTC), days[0])
		assert.Equal(t, time.Date(tt.year, tt.month, tt.want, 0, 0, 0, 0, time.UTC), days[len(days)-1])
	}
}

func TestWeekdayName(t *testing.T) {
	// 2024-01-01 was a Monday.
	assert.Equal(t, "Mon", calendar.WeekdayName(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Sat", calendar.WeekdayName(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Sun", calendar.WeekdayName(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	mon := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	assert.True(t, calendar.IsWeekend(sat))
	assert.True(t, calendar.IsWeekend(sun))
	assert.False(t, calendar.IsWeekend(mon))
}

func TestParseStatus(t *testing.T) {
	for _, s := range calendar.Statuses {
		got, ok := calendar.ParseStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	_, ok := calendar.ParseStatus("teleporting")
	assert.False(t, ok)
	_, ok = calendar.ParseStatus("")
	assert.False(t, ok)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, calendar.RoleAdmin.Valid())
	assert.True(t, calendar.RoleManager.Valid())
	assert.True(t, calendar.RoleEmployee.Valid())
	assert.False(t, calendar.Role("superuser").Valid())
}
