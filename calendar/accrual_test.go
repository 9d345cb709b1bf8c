package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zhuk18/OfficeCal/calendar"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestAccruedVacation(t *testing.T) {
	tests := []struct {
		name  string
		start *time.Time
		year  int
		month int
		want  int
	}{
		{"no start date, full year", nil, 2024, 12, 20},
		{"no start date, half year", nil, 2024, 6, 10},
		{"no start date, one month", nil, 2024, 1, 1},
		{"started Jan 1 same year", date(2024, time.January, 1), 2024, 12, 20},
		{"started Jul 1, year end", date(2024, time.July, 1), 2024, 12, 10},
		{"started Jul 1, before start", date(2024, time.July, 1), 2024, 3, 0},
		{"started Jul 1, start month counts fully", date(2024, time.July, 1), 2024, 7, 1},
		{"started mid-month, start month counts fully", date(2024, time.July, 20), 2024, 7, 1},
		{"starts next year", date(2025, time.January, 1), 2024, 12, 0},
		{"started prior year, full accrual", date(2020, time.March, 15), 2024, 12, 20},
		{"started prior year, partial", date(2020, time.March, 15), 2024, 5, 8}, // floor(5*20/12)
		{"month clamped to 12", nil, 2024, 14, 20},
		{"truncates, never rounds up", nil, 2024, 11, 18}, // 11*20/12 = 18.33
		{"started Nov, two months", date(2024, time.November, 1), 2024, 12, 3}, // floor(2*20/12)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.AccruedVacation(tt.start, tt.year, tt.month)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccruedVacation_EveryMonthIsMonotonic(t *testing.T) {
	prev := 0
	for m := 1; m <= 12; m++ {
		got := calendar.AccruedVacation(nil, 2024, m)
		assert.GreaterOrEqual(t, got, prev, "month %d", m)
		prev = got
	}
	assert.Equal(t, calendar.AnnualVacationDays, prev)
}
