/*
errors.go - Centralized error types for the revenue engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and the API layer classify errors with errors.Is/As.

ERROR CATEGORIES:
  1. Input errors - Invalid contract intervals, quarters, dates, months
  2. Arithmetic guards - Degenerate divisions that must never surface as NaN
  3. Store errors - Missing records and uniqueness violations

All errors are synchronous and local. None of them are retryable: they mean
the caller passed something wrong, not that something transient failed.

SEE ALSO:
  - proration.go: InvalidIntervalError
  - fiscal.go: InvalidQuarterError
  - aggregate.go: FetchError
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a contract amount is not positive or
	// its start date is after its end date. No partial result is produced.
	ErrInvalidInterval = errors.New("invalid contract interval")

	// ErrInvalidQuarter is returned for a fiscal quarter outside 1-4.
	ErrInvalidQuarter = errors.New("invalid fiscal quarter")

	// ErrDivisionDegenerate guards the daily-rate division. A valid interval
	// always spans at least one day, so seeing this means a bug upstream.
	ErrDivisionDegenerate = errors.New("degenerate division: interval spans no days")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidDate is returned when a date string is not a real YYYY-MM-DD day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned for a month outside 1-12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrDealItemNotFound is returned when a referenced deal item doesn't exist.
	ErrDealItemNotFound = errors.New("deal item not found")

	// ErrDealNotFound is returned when a deal item refers to an unknown deal.
	ErrDealNotFound = errors.New("deal not found")

	// ErrDuplicateAllocation is returned when a contract already has a row for
	// the same year and month.
	ErrDuplicateAllocation = errors.New("duplicate monthly allocation")

	// ErrInvalidBudgetType is returned for an unknown budget category type.
	ErrInvalidBudgetType = errors.New("invalid budget type")

	// ErrInvalidKind is returned for an unknown product or cost type.
	ErrInvalidKind = errors.New("invalid product or cost type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidIntervalError explains why a contract interval was rejected.
type InvalidIntervalError struct {
	Amount decimal.Decimal
	Start  Date
	End    Date
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid contract interval: %s (amount %s, %s to %s)",
		e.Reason, e.Amount.String(), e.Start, e.End)
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// InvalidQuarterError carries the rejected quarter number.
type InvalidQuarterError struct {
	Quarter int
}

func (e *InvalidQuarterError) Error() string {
	return fmt.Sprintf("invalid fiscal quarter %d: must be between 1 and 4", e.Quarter)
}

func (e *InvalidQuarterError) Unwrap() error {
	return ErrInvalidQuarter
}

// FetchError records which month's metric fetch failed during aggregation.
type FetchError struct {
	Month YearMonth
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch metrics for %s: %v", e.Month, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidQuarter) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidBudgetType) ||
		errors.Is(err, ErrInvalidKind)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDealItemNotFound) || errors.Is(err, ErrDealNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAllocation)
}
