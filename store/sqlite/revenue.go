package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// DEALS
// =============================================================================

// SaveDeal inserts or updates a deal.
func (s *Store) SaveDeal(ctx context.Context, deal revenue.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (id, customer, status, deal_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer = excluded.customer,
			status = excluded.status,
			deal_date = excluded.deal_date
	`, deal.ID, deal.Customer, string(deal.Status), deal.DealDate.String(), formatTime(deal.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save deal: %w", err)
	}
	return nil
}

// GetDeal returns nil, nil when the deal does not exist.
func (s *Store) GetDeal(ctx context.Context, id string) (*revenue.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		deal      revenue.Deal
		status    string
		dealDate  string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, customer, status, deal_date, created_at FROM deals WHERE id = ?", id,
	).Scan(&deal.ID, &deal.Customer, &status, &dealDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	deal.Status = revenue.DealStatus(status)
	if deal.DealDate, err = parseDate(dealDate); err != nil {
		return nil, err
	}
	deal.CreatedAt = parseTime(createdAt)
	return &deal, nil
}

// =============================================================================
// DEAL ITEMS
// =============================================================================

// SaveDealItem inserts or updates an item. Updating keeps the item's
// monthly_sales rows; callers rebuild them afterwards.
func (s *Store) SaveDealItem(ctx context.Context, item revenue.DealItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deal_items (id, deal_id, product_name, product_type, amount, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deal_id = excluded.deal_id,
			product_name = excluded.product_name,
			product_type = excluded.product_type,
			amount = excluded.amount,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`,
		string(item.ID),
		item.DealID,
		item.ProductName,
		string(item.ProductType),
		item.Amount.String(),
		item.StartDate.String(),
		item.EndDate.String(),
		formatTime(item.CreatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: %s", generic.ErrDealNotFound, item.DealID)
		}
		return fmt.Errorf("failed to save deal item: %w", err)
	}
	return nil
}

const dealItemColumns = `i.id, i.deal_id, i.product_name, i.product_type, i.amount, i.start_date, i.end_date, i.created_at`

// GetDealItem returns generic.ErrDealItemNotFound when the item does not exist.
func (s *Store) GetDealItem(ctx context.Context, id generic.ContractID) (*revenue.DealItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.queryDealItems(ctx, "SELECT "+dealItemColumns+" FROM deal_items i WHERE i.id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrDealItemNotFound, id)
	}
	return &items[0], nil
}

// DeleteDealItem removes an item; its monthly rows go with it (ON DELETE CASCADE).
func (s *Store) DeleteDealItem(ctx context.Context, id generic.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM deal_items WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete deal item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrDealItemNotFound, id)
	}
	return nil
}

// ListDealItems returns every item ordered by id.
func (s *Store) ListDealItems(ctx context.Context) ([]revenue.DealItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryDealItems(ctx, "SELECT "+dealItemColumns+" FROM deal_items i ORDER BY i.id ASC")
}

// WonDealItems returns the items of deals won with a deal date in the month.
func (s *Store) WonDealItems(ctx context.Context, month generic.YearMonth) ([]revenue.DealItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryDealItems(ctx, `
		SELECT `+dealItemColumns+`
		FROM deal_items i
		JOIN deals d ON d.id = i.deal_id
		WHERE d.status = ? AND d.deal_date >= ? AND d.deal_date <= ?
		ORDER BY i.id ASC
	`, string(revenue.DealWon), month.FirstDay().String(), month.LastDay().String())
}

func (s *Store) queryDealItems(ctx context.Context, query string, args ...any) ([]revenue.DealItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deal items: %w", err)
	}
	defer rows.Close()

	items := []revenue.DealItem{}
	for rows.Next() {
		var (
			item               revenue.DealItem
			id, productType    string
			startDate, endDate string
			createdAt          string
		)
		err := rows.Scan(&id, &item.DealID, &item.ProductName, &productType,
			&item.Amount, &startDate, &endDate, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal item: %w", err)
		}
		item.ID = generic.ContractID(id)
		item.ProductType = revenue.ProductType(productType)
		if item.StartDate, err = parseDate(startDate); err != nil {
			return nil, err
		}
		if item.EndDate, err = parseDate(endDate); err != nil {
			return nil, err
		}
		item.CreatedAt = parseTime(createdAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

// MonthlySales joins the month's allocation rows with their item's product type.
func (s *Store) MonthlySales(ctx context.Context, month generic.YearMonth) ([]revenue.MonthlySale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.deal_item_id, i.product_type, m.amount
		FROM monthly_sales m
		JOIN deal_items i ON i.id = m.deal_item_id
		WHERE m.year = ? AND m.month = ?
		ORDER BY m.deal_item_id ASC
	`, month.Year, int(month.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	defer rows.Close()

	sales := []revenue.MonthlySale{}
	for rows.Next() {
		var (
			sale        revenue.MonthlySale
			itemID      string
			productType string
		)
		if err := rows.Scan(&itemID, &productType, &sale.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sale: %w", err)
		}
		sale.DealItemID = generic.ContractID(itemID)
		sale.ProductType = revenue.ProductType(productType)
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// =============================================================================
// COSTS
// =============================================================================

// SaveCost inserts a cost line, assigning an id when it has none.
func (s *Store) SaveCost(ctx context.Context, cost revenue.CostEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cost.ID == "" {
		cost.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO costs (id, year, month, type, category, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, cost.ID, cost.Month.Year, int(cost.Month.Month), string(cost.Type), cost.Category,
		cost.Amount.String(), cost.Description, formatTime(cost.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save cost: %w", err)
	}
	return nil
}

func (s *Store) CostsForMonth(ctx context.Context, month generic.YearMonth) ([]revenue.CostEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, month, type, category, amount, description, created_at
		FROM costs
		WHERE year = ? AND month = ?
		ORDER BY created_at ASC, id ASC
	`, month.Year, int(month.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}
	defer rows.Close()

	costs := []revenue.CostEntry{}
	for rows.Next() {
		var (
			c         revenue.CostEntry
			m         int
			costType  string
			amount    decimal.Decimal
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Month.Year, &m, &costType, &c.Category, &amount, &c.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cost: %w", err)
		}
		c.Month.Month = time.Month(m)
		c.Type = revenue.CostType(costType)
		c.Amount = amount
		c.CreatedAt = parseTime(createdAt)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// =============================================================================
// BUDGETS
// =============================================================================

// SaveBudget inserts a budget line, assigning an id when it has none.
func (s *Store) SaveBudget(ctx context.Context, budget revenue.BudgetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budget.ID == "" {
		budget.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, year, month, type, category, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, budget.ID, budget.Month.Year, int(budget.Month.Month), string(budget.Type), budget.Category,
		budget.Amount.String(), budget.Description, formatTime(budget.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

func (s *Store) BudgetsForMonth(ctx context.Context, month generic.YearMonth, budgetType revenue.BudgetType, category *string) ([]revenue.BudgetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, year, month, type, category, amount, description, created_at
		FROM budgets
		WHERE year = ? AND month = ? AND type = ?`
	args := []any{month.Year, int(month.Month), string(budgetType)}
	if category != nil {
		query += " AND category = ?"
		args = append(args, *category)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []revenue.BudgetEntry{}
	for rows.Next() {
		var (
			b          revenue.BudgetEntry
			m          int
			budgetType string
			amount     decimal.Decimal
			createdAt  string
		)
		if err := rows.Scan(&b.ID, &b.Month.Year, &m, &budgetType, &b.Category, &amount, &b.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Month.Month = time.Month(m)
		b.Type = revenue.BudgetType(budgetType)
		b.Amount = amount
		b.CreatedAt = parseTime(createdAt)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

var _ revenue.Store = (*Store)(nil)
