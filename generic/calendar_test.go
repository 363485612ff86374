package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.Date {
	return generic.NewDate(year, month, day)
}

func ym(year int, month time.Month) generic.YearMonth {
	return generic.YearMonth{Year: year, Month: month}
}

// =============================================================================
// DATE TESTS
// =============================================================================

func TestDateOf_IgnoresClockAndZone(t *testing.T) {
	// GIVEN: 23:30 on Jan 31 in a zone far east of UTC
	tokyo := time.FixedZone("JST", 9*60*60)
	late := time.Date(2024, time.January, 31, 23, 30, 0, 0, tokyo)

	// THEN: The date keeps the local calendar day, not the UTC one
	assert.Equal(t, date(2024, time.January, 31), generic.DateOf(late))
}

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), d)

	_, err = generic.ParseDate("2023-02-29")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	_, err = generic.ParseDate("29/02/2024")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Start generic.Date `json:"start"`
	}
	b, err := json.Marshal(payload{Start: date(2023, time.December, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2023-12-01"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal(b, &p))
	assert.Equal(t, date(2023, time.December, 1), p.Start)
}

func TestDate_AddDaysCrossesYear(t *testing.T) {
	assert.Equal(t, date(2024, time.January, 1), date(2023, time.December, 31).AddDays(1))
	assert.Equal(t, date(2024, time.February, 29), date(2024, time.March, 1).AddDays(-1))
}

func TestYearMonth_AddMonths(t *testing.T) {
	assert.Equal(t, ym(2024, time.February), ym(2023, time.December).AddMonths(2))
	assert.Equal(t, ym(2022, time.December), ym(2023, time.January).AddMonths(-1))
	assert.Equal(t, ym(2021, time.November), ym(2023, time.January).AddMonths(-14))
}

// =============================================================================
// CALENDAR MATH TESTS
// =============================================================================

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2023, time.January, 31},
		{2023, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28}, // century, not leap
		{2000, time.February, 29}, // divisible by 400
		{2023, time.April, 30},
		{2023, time.November, 30},
		{2023, time.December, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generic.DaysInMonth(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestInclusiveDaySpan(t *testing.T) {
	assert.Equal(t, 1, generic.InclusiveDaySpan(date(2023, time.June, 15), date(2023, time.June, 15)))
	assert.Equal(t, 6, generic.InclusiveDaySpan(date(2023, time.June, 15), date(2023, time.June, 20)))
	assert.Equal(t, 365, generic.InclusiveDaySpan(date(2023, time.January, 1), date(2023, time.December, 31)))
	assert.Equal(t, 366, generic.InclusiveDaySpan(date(2024, time.January, 1), date(2024, time.December, 31)))
	// Spans a DST change in most northern zones; date-only math is unaffected
	assert.Equal(t, 3, generic.InclusiveDaySpan(date(2024, time.March, 30), date(2024, time.April, 1)))
}

func TestMonthsSpanned_ScenarioAcrossYearEnd(t *testing.T) {
	// GIVEN: 2023-11-15 .. 2024-01-10
	start, end := date(2023, time.November, 15), date(2024, time.January, 10)

	// WHEN: Listing months and overlaps
	months := generic.MonthsSpanned(start, end)

	// THEN: Three months with 16, 31 and 10 days
	require.Equal(t, []generic.YearMonth{
		ym(2023, time.November), ym(2023, time.December), ym(2024, time.January),
	}, months)
	assert.Equal(t, 16, generic.OverlapDaysInMonth(months[0], start, end))
	assert.Equal(t, 31, generic.OverlapDaysInMonth(months[1], start, end))
	assert.Equal(t, 10, generic.OverlapDaysInMonth(months[2], start, end))
}

func TestMonthsSpanned_StrictlyAscendingWithoutGaps(t *testing.T) {
	months := generic.MonthsSpanned(date(2019, time.March, 31), date(2024, time.February, 1))
	require.Len(t, months, 60)
	for i := 1; i < len(months); i++ {
		assert.Equal(t, months[i-1].Next(), months[i])
	}
}

func TestMonthsSpanned_InvertedIsEmpty(t *testing.T) {
	assert.Empty(t, generic.MonthsSpanned(date(2024, time.January, 2), date(2024, time.January, 1)))
}

func TestOverlapDaysInMonth_DisjointIsZero(t *testing.T) {
	start, end := date(2023, time.March, 10), date(2023, time.April, 5)

	assert.Equal(t, 0, generic.OverlapDaysInMonth(ym(2023, time.February), start, end))
	assert.Equal(t, 0, generic.OverlapDaysInMonth(ym(2023, time.May), start, end))
	assert.Equal(t, 22, generic.OverlapDaysInMonth(ym(2023, time.March), start, end))
	assert.Equal(t, 5, generic.OverlapDaysInMonth(ym(2023, time.April), start, end))
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod_ContainsAndDays(t *testing.T) {
	p := generic.Period{Start: date(2023, time.December, 1), End: date(2024, time.February, 29)}

	assert.True(t, p.Contains(date(2023, time.December, 1)))
	assert.True(t, p.Contains(date(2024, time.February, 29)))
	assert.False(t, p.Contains(date(2024, time.March, 1)))
	assert.Equal(t, 91, p.Days())
	assert.Len(t, p.Months(), 3)
	assert.Equal(t, "[2023-12-01, 2024-02-29]", p.String())
}

func TestPeriod_ValidateRejectsInverted(t *testing.T) {
	p := generic.Period{Start: date(2024, time.February, 1), End: date(2024, time.January, 1)}
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidPeriod)
	assert.Equal(t, 0, p.Days())
}

func TestTrailingMonths(t *testing.T) {
	p := generic.TrailingMonths(ym(2024, time.February), 3)
	assert.Equal(t, date(2023, time.December, 1), p.Start)
	assert.Equal(t, date(2024, time.February, 29), p.End)
	assert.Len(t, p.Months(), 3)

	assert.Equal(t, generic.MonthPeriod(ym(2024, time.February)), generic.TrailingMonths(ym(2024, time.February), 0))
}
