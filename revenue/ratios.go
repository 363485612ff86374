package revenue

import (
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// RATIOS - Percentages shown next to report figures
// =============================================================================

var hundred = decimal.NewFromInt(100)

// percent returns part/whole as a percentage rounded to 2 places, or 0 when
// whole is zero.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return generic.RoundMoney(part.Div(whole).Mul(hundred))
}

// AchievementRate is actual as a percentage of budget. A zero budget
// yields 0.
func AchievementRate(actual, budget decimal.Decimal) decimal.Decimal {
	return percent(actual, budget)
}

// Difference is actual minus budget, rounded to cents.
func Difference(actual, budget decimal.Decimal) decimal.Decimal {
	return generic.RoundMoney(actual.Sub(budget))
}

// ProfitMargin is profit as a percentage of revenue. Zero revenue yields 0.
func ProfitMargin(revenue, profit decimal.Decimal) decimal.Decimal {
	return percent(profit, revenue)
}

// ChangeRate is the change from previous to current as a percentage of
// previous. A zero previous value yields 0.
func ChangeRate(current, previous decimal.Decimal) decimal.Decimal {
	return percent(current.Sub(previous), previous)
}
