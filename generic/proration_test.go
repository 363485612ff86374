package generic_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/generic"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// PRORATION SCENARIOS
// =============================================================================

func TestProrate_FullCalendarYear(t *testing.T) {
	// GIVEN: 1,100,000 over 2023
	// WHEN: Prorating
	result, err := generic.Prorate(money("1100000"), date(2023, time.January, 1), date(2023, time.December, 31))
	require.NoError(t, err)

	// THEN: 365 days at 3013.70/day, one entry per month
	assert.Equal(t, 365, result.TotalDays)
	assert.True(t, result.DailyRate.Equal(money("3013.70")), "daily rate %s", result.DailyRate)
	require.Len(t, result.MonthlyBreakdown, 12)

	jan := result.MonthlyBreakdown[0]
	assert.Equal(t, 2023, jan.Year)
	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, 31, jan.ApplicableDays)
	assert.Equal(t, 31, jan.TotalDaysInMonth)
	// 1,100,000 * 31 / 365 = 93,424.657... -> 93,424.66
	assert.True(t, jan.Amount.Equal(money("93424.66")), "january %s", jan.Amount)

	feb := result.MonthlyBreakdown[1]
	assert.Equal(t, 28, feb.ApplicableDays)
	// 1,100,000 * 28 / 365 = 84,383.561... -> 84,383.56
	assert.True(t, feb.Amount.Equal(money("84383.56")), "february %s", feb.Amount)
}

func TestProrate_SingleMonth(t *testing.T) {
	result, err := generic.Prorate(money("100"), date(2023, time.June, 15), date(2023, time.June, 20))
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalDays)
	require.Len(t, result.MonthlyBreakdown, 1)
	assert.Equal(t, 6, result.MonthlyBreakdown[0].ApplicableDays)
	assert.Equal(t, 30, result.MonthlyBreakdown[0].TotalDaysInMonth)
	assert.True(t, result.MonthlyBreakdown[0].Amount.Equal(money("100")))
	assert.True(t, result.DailyRate.Equal(money("16.67")))
}

func TestProrate_SingleDay(t *testing.T) {
	d := date(2024, time.February, 29)
	result, err := generic.Prorate(money("42.5"), d, d)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalDays)
	require.Len(t, result.MonthlyBreakdown, 1)
	assert.Equal(t, 29, result.MonthlyBreakdown[0].TotalDaysInMonth)
	assert.True(t, result.MonthlyBreakdown[0].Amount.Equal(money("42.5")))
}

func TestProrate_UsesUnroundedRateForMonths(t *testing.T) {
	// GIVEN: 1000 over 60 days -> 16.666.../day, reported as 16.67
	result, err := generic.Prorate(money("1000"), date(2023, time.January, 31), date(2023, time.March, 31))
	require.NoError(t, err)

	require.Len(t, result.MonthlyBreakdown, 3)
	assert.True(t, result.DailyRate.Equal(money("16.67")))

	// THEN: February is 28 * 16.666... = 466.67, not 28 * 16.67 = 466.76
	assert.True(t, result.MonthlyBreakdown[0].Amount.Equal(money("16.67")), "%s", result.MonthlyBreakdown[0].Amount)
	assert.True(t, result.MonthlyBreakdown[1].Amount.Equal(money("466.67")), "%s", result.MonthlyBreakdown[1].Amount)
	assert.True(t, result.MonthlyBreakdown[2].Amount.Equal(money("516.67")), "%s", result.MonthlyBreakdown[2].Amount)

	// Independent rounding leaves the total a cent above the contract
	assert.True(t, result.Total().Equal(money("1000.01")))
	assert.True(t, result.Drift(money("1000")).Equal(money("0.01")))
}

// =============================================================================
// INVALID INPUT
// =============================================================================

func TestProrate_RejectsInvalidIntervals(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		start  generic.Date
		end    generic.Date
	}{
		{"zero amount", decimal.Zero, date(2023, time.January, 1), date(2023, time.January, 31)},
		{"negative amount", money("-5"), date(2023, time.January, 1), date(2023, time.January, 31)},
		{"start after end", money("100"), date(2023, time.February, 1), date(2023, time.January, 31)},
		{"missing start", money("100"), generic.Date{}, date(2023, time.January, 31)},
		{"missing end", money("100"), date(2023, time.January, 1), generic.Date{}},
		{"missing both", money("100"), generic.Date{}, generic.Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := generic.Prorate(tt.amount, tt.start, tt.end)

			assert.ErrorIs(t, err, generic.ErrInvalidInterval)
			var ivErr *generic.InvalidIntervalError
			assert.ErrorAs(t, err, &ivErr)
			assert.Empty(t, result.MonthlyBreakdown, "no partial result")
			assert.True(t, generic.IsClientError(err))
		})
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestProrate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	origin := date(2015, time.January, 1)

	for i := 0; i < 500; i++ {
		start := origin.AddDays(rng.Intn(4000))
		end := start.AddDays(rng.Intn(1500))
		amount := decimal.New(int64(rng.Intn(100_000_000)+1), -2)

		result, err := generic.Prorate(amount, start, end)
		require.NoError(t, err)

		// Day coverage is exact
		days := 0
		for _, m := range result.MonthlyBreakdown {
			assert.GreaterOrEqual(t, m.ApplicableDays, 0)
			assert.LessOrEqual(t, m.ApplicableDays, m.TotalDaysInMonth)
			days += m.ApplicableDays
		}
		assert.Equal(t, result.TotalDays, days, "%s..%s", start, end)

		// Conservation within one cent per month
		bound := decimal.New(int64(len(result.MonthlyBreakdown)), -2)
		assert.True(t, result.Drift(amount).Abs().LessThan(bound),
			"drift %s for %s over %s..%s", result.Drift(amount), amount, start, end)

		// Ordered, one entry per spanned month
		require.Len(t, result.MonthlyBreakdown, len(generic.MonthsSpanned(start, end)))
		for j := 1; j < len(result.MonthlyBreakdown); j++ {
			prev := result.MonthlyBreakdown[j-1].YearMonth()
			assert.Equal(t, prev.Next(), result.MonthlyBreakdown[j].YearMonth())
		}
	}
}
