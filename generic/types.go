/*
Package generic provides the revenue recognition engine.

PURPOSE:
  This package contains the domain-agnostic arithmetic behind the dashboard:
  day-accurate proration of a contract value across calendar months, the
  December-start fiscal calendar, and the fold that turns per-month metrics
  into fiscal-period totals. Whether the month holds license revenue, cost
  of goods or a budget line, the same engine computes it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal.Decimal rounded to cents only where a value is reported
  - ContractID: Identifier threaded through proration into stored rows

DESIGN PRINCIPLES:
  1. Pure functions: Nothing in this package keeps state between calls
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Date-only values: Date has no clock and no zone
  4. No logging: Callers decide how to report errors

USAGE:
  result, err := generic.Prorate(
      decimal.NewFromInt(1_100_000),
      generic.NewDate(2023, time.January, 1),
      generic.NewDate(2023, time.December, 31),
  )

SEE ALSO:
  - proration.go: Contract value to monthly allocations
  - fiscal.go: Fiscal year/quarter mapping
  - aggregate.go: Per-month metric folding
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal amounts with currency rounding
// =============================================================================

// MoneyPlaces is the number of fractional digits kept for reported amounts.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to cents. For the positive amounts
// the engine produces this is plain half-up rounding.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ParseAmount parses a decimal string such as "1100000" or "99.95".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ContractID identifies the contract line (deal item) an allocation belongs to.
// The engine never interprets it.
type ContractID string
