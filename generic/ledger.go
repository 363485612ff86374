/*
ledger.go - Recognised revenue schedule per contract

PURPOSE:
  The Ledger turns a contract interval into stored monthly rows. It is the
  only writer of allocations: prorate, stamp ids, replace the contract's
  previous schedule.

CRITICAL INVARIANTS:
  1. WHOLE SCHEDULES: A contract's rows are replaced together, never patched
  2. ONE ROW PER MONTH: (contract, year, month) is unique
  3. NO PARTIAL WRITES: An invalid interval writes nothing

EXAMPLE FLOW:
  1. Deal item created: Post(item, 1,100,000, 2023-01-01..2023-12-31)
     -> 12 rows, 2023-01 .. 2023-12
  2. End date moved to 2024-03-31: Post again
     -> the 12 old rows are replaced by 15 new ones

SEE ALSO:
  - store.go: Low-level persistence interface
  - proration.go: The allocation algorithm
*/
package generic

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// =============================================================================
// LEDGER - Prorate and persist contract schedules
// =============================================================================

// Ledger records each contract's monthly revenue schedule.
type Ledger interface {
	// Post prorates the interval and replaces the contract's rows.
	Post(ctx context.Context, contractID ContractID, interval ContractInterval) (ProrationResult, error)

	// Remove deletes the contract's rows.
	Remove(ctx context.Context, contractID ContractID) error

	// Schedule returns the contract's stored rows, ordered by month.
	Schedule(ctx context.Context, contractID ContractID) ([]AllocationRecord, error)
}

// =============================================================================
// DEFAULT LEDGER - Implementation using AllocationStore
// =============================================================================

type DefaultLedger struct {
	Store AllocationStore

	// NewID generates row ids. Defaults to ULIDs.
	NewID func() string
	// Now stamps CreatedAt. Defaults to time.Now in UTC.
	Now func() time.Time
}

func NewLedger(store AllocationStore) *DefaultLedger {
	return &DefaultLedger{
		Store: store,
		NewID: func() string { return ulid.Make().String() },
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (l *DefaultLedger) Post(ctx context.Context, contractID ContractID, interval ContractInterval) (ProrationResult, error) {
	result, err := interval.Prorate()
	if err != nil {
		return ProrationResult{}, err
	}
	if err := l.Store.ReplaceAllocations(ctx, contractID, l.records(contractID, result)); err != nil {
		return ProrationResult{}, err
	}
	return result, nil
}

func (l *DefaultLedger) Remove(ctx context.Context, contractID ContractID) error {
	return l.Store.DeleteAllocations(ctx, contractID)
}

func (l *DefaultLedger) Schedule(ctx context.Context, contractID ContractID) ([]AllocationRecord, error) {
	return l.Store.LoadAllocations(ctx, contractID)
}

// records binds a proration result to a contract, one record per month.
func (l *DefaultLedger) records(contractID ContractID, result ProrationResult) []AllocationRecord {
	now := l.Now()
	recs := make([]AllocationRecord, len(result.MonthlyBreakdown))
	for i, m := range result.MonthlyBreakdown {
		recs[i] = AllocationRecord{
			ID:               l.NewID(),
			ContractID:       contractID,
			Month:            m.YearMonth(),
			TotalDaysInMonth: m.TotalDaysInMonth,
			ApplicableDays:   m.ApplicableDays,
			DailyRate:        result.DailyRate,
			Amount:           m.Amount,
			CreatedAt:        now,
		}
	}
	return recs
}
