/*
accrual.go - Vacation accrual calculator

PURPOSE:
  Computes how many vacation days a user has earned by the end of a given
  month. The rule is a fixed linear accrual: 20 days per year, credited
  monthly at 20/12 per month, truncated (never rounded up) at the final
  step. Mid-year hires are pro-rated from their start month, and the start
  month itself counts as a full month.

PRECISION:
  The monthly rate is not representable in binary floating point, so the
  math runs on decimal.Decimal and truncates once with IntPart(). The
  results are bit-exact integers:

    AccruedVacation(nil, Y, 12)        == 20
    AccruedVacation(Jan 1 of Y, Y, 12) == 20
    AccruedVacation(Jul 1 of Y, Y, 12) == floor(6*20/12) == 10
    AccruedVacation(Jul 1 of Y, Y, 3)  == 0

SEE ALSO:
  - report: combines accrual with vacation-day counts into balances
*/
package calendar

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnnualVacationDays is the fixed yearly vacation allotment.
const AnnualVacationDays = 20

var (
	annualAllotment = decimal.NewFromInt(AnnualVacationDays)
	monthsPerYear   = decimal.NewFromInt(12)
)

// AccruedVacation returns the vacation days accrued by the end of
// (year, month) for a user who started employment on start. A nil start
// means the user predates the tracked range and accrues from January.
func AccruedVacation(start *time.Time, year, month int) int {
	if month > 12 {
		month = 12
	}
	if month < 1 {
		return 0
	}

	months := month
	if start != nil {
		switch {
		case start.Year() > year:
			// Employment has not begun.
			return 0
		case start.Year() == year:
			startMonth := int(start.Month())
			if month < startMonth {
				return 0
			}
			// The start month is credited as a full month.
			months = month - startMonth + 1
		}
	}

	accrued := decimal.NewFromInt(int64(months)).
		Mul(annualAllotment).
		Div(monthsPerYear)

	// IntPart truncates toward zero; months is non-negative, so this is floor.
	return int(accrued.IntPart())
}
