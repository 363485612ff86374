package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// ALLOCATION STORE (generic.AllocationStore interface)
// =============================================================================

// ReplaceAllocations deletes the item's monthly_sales rows and inserts recs
// in one transaction.
func (s *Store) ReplaceAllocations(ctx context.Context, contractID generic.ContractID, recs []generic.AllocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM monthly_sales WHERE deal_item_id = ?", string(contractID)); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO monthly_sales
		(id, deal_item_id, year, month, total_days_in_month, applicable_days, daily_rate, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			string(contractID),
			r.Month.Year,
			int(r.Month.Month),
			r.TotalDaysInMonth,
			r.ApplicableDays,
			r.DailyRate.String(),
			r.Amount.String(),
			formatTime(r.CreatedAt),
		)
		if err != nil {
			switch {
			case isUniqueConstraintError(err):
				return fmt.Errorf("%w: %s %s", generic.ErrDuplicateAllocation, contractID, r.Month)
			case isForeignKeyError(err):
				return fmt.Errorf("%w: %s", generic.ErrDealItemNotFound, contractID)
			}
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteAllocations removes every monthly_sales row of the item.
func (s *Store) DeleteAllocations(ctx context.Context, contractID generic.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM monthly_sales WHERE deal_item_id = ?", string(contractID))
	if err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}

// LoadAllocations returns the item's rows ordered by month.
func (s *Store) LoadAllocations(ctx context.Context, contractID generic.ContractID) ([]generic.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAllocations(ctx, `
		SELECT id, deal_item_id, year, month, total_days_in_month, applicable_days, daily_rate, amount, created_at
		FROM monthly_sales
		WHERE deal_item_id = ?
		ORDER BY year ASC, month ASC
	`, string(contractID))
}

// LoadMonth returns every item's row for the month ordered by item id.
func (s *Store) LoadMonth(ctx context.Context, month generic.YearMonth) ([]generic.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAllocations(ctx, `
		SELECT id, deal_item_id, year, month, total_days_in_month, applicable_days, daily_rate, amount, created_at
		FROM monthly_sales
		WHERE year = ? AND month = ?
		ORDER BY deal_item_id ASC
	`, month.Year, int(month.Month))
}

func (s *Store) queryAllocations(ctx context.Context, query string, args ...any) ([]generic.AllocationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	recs := []generic.AllocationRecord{}
	for rows.Next() {
		r, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func scanAllocation(rows *sql.Rows) (generic.AllocationRecord, error) {
	var (
		r         generic.AllocationRecord
		itemID    string
		month     int
		dailyRate decimal.Decimal
		amount    decimal.Decimal
		createdAt string
	)

	err := rows.Scan(
		&r.ID, &itemID, &r.Month.Year, &month,
		&r.TotalDaysInMonth, &r.ApplicableDays, &dailyRate, &amount, &createdAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan allocation: %w", err)
	}

	r.ContractID = generic.ContractID(itemID)
	r.Month.Month = time.Month(month)
	r.DailyRate = dailyRate
	r.Amount = amount
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

var _ generic.AllocationStore = (*Store)(nil)
