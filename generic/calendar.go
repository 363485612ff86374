package generic

import "time"

// =============================================================================
// CALENDAR MATH - Day counting on date-only values
// =============================================================================

// IsLeapYear applies the Gregorian rule: every 4th year, except centuries
// that are not divisible by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of the month (28-31).
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// InclusiveDaySpan counts the calendar days from a to b, both ends included,
// so a == b yields 1. When b is before a the result is <= 0.
func InclusiveDaySpan(a, b Date) int {
	return b.ordinal() - a.ordinal() + 1
}

// MonthsSpanned returns every month m with a <= last(m) and b >= first(m),
// ascending. It returns nil when b is before a.
func MonthsSpanned(a, b Date) []YearMonth {
	if b.Before(a) {
		return nil
	}
	first, last := a.YearMonth(), b.YearMonth()
	months := make([]YearMonth, 0, last.index()-first.index()+1)
	for ym := first; !ym.After(last); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// OverlapDaysInMonth intersects [a, b] with the month and returns the
// inclusive length of the intersection, or 0 when they do not meet.
func OverlapDaysInMonth(ym YearMonth, a, b Date) int {
	start, end := ym.FirstDay(), ym.LastDay()
	if a.After(start) {
		start = a
	}
	if b.Before(end) {
		end = b
	}
	if end.Before(start) {
		return 0
	}
	return InclusiveDaySpan(start, end)
}
