package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT INTERVAL - Input to proration
// =============================================================================

// ContractInterval is a contract value spread over [Start, End].
type ContractInterval struct {
	Amount decimal.Decimal
	Start  Date
	End    Date
}

// Validate enforces amount > 0, both dates set and Start <= End.
func (ci ContractInterval) Validate() error {
	if ci.Start.IsZero() || ci.End.IsZero() {
		return &InvalidIntervalError{Amount: ci.Amount, Start: ci.Start, End: ci.End, Reason: "missing date"}
	}
	if !ci.Amount.IsPositive() {
		return &InvalidIntervalError{Amount: ci.Amount, Start: ci.Start, End: ci.End, Reason: "amount must be positive"}
	}
	if ci.Start.After(ci.End) {
		return &InvalidIntervalError{Amount: ci.Amount, Start: ci.Start, End: ci.End, Reason: "start date after end date"}
	}
	return nil
}

func (ci ContractInterval) Period() Period { return Period{Start: ci.Start, End: ci.End} }

// =============================================================================
// PRORATION RESULT
// =============================================================================

// MonthlyAllocation is the share of a contract recognised in one month.
type MonthlyAllocation struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	TotalDaysInMonth int             `json:"total_days_in_month"`
	ApplicableDays   int             `json:"applicable_days"`
	Amount           decimal.Decimal `json:"amount"`
}

func (ma MonthlyAllocation) YearMonth() YearMonth {
	return YearMonth{Year: ma.Year, Month: time.Month(ma.Month)}
}

// ProrationResult holds the schedule, ordered by ascending (year, month).
type ProrationResult struct {
	TotalDays        int                 `json:"total_days"`
	DailyRate        decimal.Decimal     `json:"daily_rate"`
	MonthlyBreakdown []MonthlyAllocation `json:"monthly_breakdown"`
}

// Total sums the rounded monthly amounts.
func (r ProrationResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.MonthlyBreakdown {
		total = total.Add(m.Amount)
	}
	return total
}

// Drift is Total() minus the contract amount: the rounding difference left
// by rounding every month on its own.
func (r ProrationResult) Drift(amount decimal.Decimal) decimal.Decimal {
	return r.Total().Sub(amount)
}

// =============================================================================
// PRORATION - Spread a contract value by day across calendar months
// =============================================================================

// ratePlaces is the precision of the unrounded daily rate used for monthly
// amounts.
const ratePlaces = 16

// Prorate spreads amount evenly per day over [start, end] and returns one
// allocation per calendar month the interval touches.
//
// The reported DailyRate is rounded to cents, but each month is computed from
// the unrounded rate and then rounded on its own. The sum of the months can
// therefore differ from amount by up to half a cent per month.
func Prorate(amount decimal.Decimal, start, end Date) (ProrationResult, error) {
	return ContractInterval{Amount: amount, Start: start, End: end}.Prorate()
}

// Prorate runs the allocation for the interval. See Prorate.
func (ci ContractInterval) Prorate() (ProrationResult, error) {
	if err := ci.Validate(); err != nil {
		return ProrationResult{}, err
	}

	totalDays := InclusiveDaySpan(ci.Start, ci.End)
	if totalDays <= 0 {
		return ProrationResult{}, ErrDivisionDegenerate
	}
	rate := ci.Amount.DivRound(decimal.NewFromInt(int64(totalDays)), ratePlaces)

	months := MonthsSpanned(ci.Start, ci.End)
	breakdown := make([]MonthlyAllocation, 0, len(months))
	for _, ym := range months {
		applicable := OverlapDaysInMonth(ym, ci.Start, ci.End)
		breakdown = append(breakdown, MonthlyAllocation{
			Year:             ym.Year,
			Month:            int(ym.Month),
			TotalDaysInMonth: ym.Days(),
			ApplicableDays:   applicable,
			Amount:           RoundMoney(rate.Mul(decimal.NewFromInt(int64(applicable)))),
		})
	}

	return ProrationResult{
		TotalDays:        totalDays,
		DailyRate:        RoundMoney(rate),
		MonthlyBreakdown: breakdown,
	}, nil
}
