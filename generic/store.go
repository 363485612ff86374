/*
store.go - Persistence interface for monthly allocations

PURPOSE:
  Defines the interface between the revenue engine and the database.
  The engine itself is pure; the store keeps one row per contract and month
  so reports can read recognised revenue without re-running proration.

KEY TYPES:
  AllocationRecord: A MonthlyAllocation bound to a contract, as stored
  AllocationStore:  Replace/load rows for a contract, load rows for a month

REPLACE SEMANTICS:
  A contract's schedule is always written as a whole. ReplaceAllocations
  removes the contract's previous rows and inserts the new ones in one
  transaction, so a recalculation never leaves a mix of old and new months.

UNIQUENESS:
  (ContractID, Year, Month) is unique. The store enforces it and returns
  ErrDuplicateAllocation on violation.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: Prorates a contract and writes its rows through the store
*/
package generic

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION RECORD
// =============================================================================

// AllocationRecord is one stored month of a contract's schedule.
type AllocationRecord struct {
	ID               string
	ContractID       ContractID
	Month            YearMonth
	TotalDaysInMonth int
	ApplicableDays   int
	DailyRate        decimal.Decimal
	Amount           decimal.Decimal
	CreatedAt        time.Time
}

// =============================================================================
// ALLOCATION STORE
// =============================================================================

// AllocationStore handles persistence of monthly allocations.
type AllocationStore interface {
	// ReplaceAllocations atomically swaps every row of the contract for recs.
	ReplaceAllocations(ctx context.Context, contractID ContractID, recs []AllocationRecord) error

	// DeleteAllocations removes every row of the contract.
	DeleteAllocations(ctx context.Context, contractID ContractID) error

	// LoadAllocations returns the contract's rows ordered by month.
	LoadAllocations(ctx context.Context, contractID ContractID) ([]AllocationRecord, error)

	// LoadMonth returns every contract's row for one month.
	LoadMonth(ctx context.Context, month YearMonth) ([]AllocationRecord, error)
}
