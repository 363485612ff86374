package generic

import "fmt"

// =============================================================================
// PERIOD - Inclusive date range used for contracts and reporting windows
// =============================================================================

// Period is the boundary a report or contract covers: [Start, End], both
// days included.
//
// Examples:
//   - FY2024:    2023-12-01 .. 2024-11-30
//   - FY2024 Q1: 2023-12-01 .. 2024-02-29
//   - A contract line: 2023-11-15 .. 2024-01-10
type Period struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// MonthPeriod covers one calendar month.
func MonthPeriod(ym YearMonth) Period {
	return Period{Start: ym.FirstDay(), End: ym.LastDay()}
}

// TrailingMonths covers the n months ending with end, end included.
// n below 1 is treated as 1.
func TrailingMonths(end YearMonth, n int) Period {
	if n < 1 {
		n = 1
	}
	return Period{Start: end.AddMonths(-(n - 1)).FirstDay(), End: end.LastDay()}
}

// Validate rejects periods whose end is before their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of days in the period, or 0 for an inverted one.
func (p Period) Days() int {
	if n := InclusiveDaySpan(p.Start, p.End); n > 0 {
		return n
	}
	return 0
}

// Months lists the calendar months the period touches, in order.
func (p Period) Months() []YearMonth {
	return MonthsSpanned(p.Start, p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
