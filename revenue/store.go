package revenue

import (
	"context"

	"github.com/warp/revenue-engine/generic"
)

// Store is the persistence the revenue package needs. Allocation rows are
// written through generic.AllocationStore; everything else is read here.
//
// IMPLEMENTATIONS:
//   - store/sqlite/sqlite.go
type Store interface {
	generic.AllocationStore

	SaveDeal(ctx context.Context, deal Deal) error
	// GetDeal returns nil, nil when the deal does not exist.
	GetDeal(ctx context.Context, id string) (*Deal, error)

	SaveDealItem(ctx context.Context, item DealItem) error
	// GetDealItem returns ErrDealItemNotFound when the item does not exist.
	GetDealItem(ctx context.Context, id generic.ContractID) (*DealItem, error)
	ListDealItems(ctx context.Context) ([]DealItem, error)
	// DeleteDealItem returns ErrDealItemNotFound when the item does not exist.
	DeleteDealItem(ctx context.Context, id generic.ContractID) error

	// MonthlySales returns every allocation row of the month with its
	// item's product type.
	MonthlySales(ctx context.Context, month generic.YearMonth) ([]MonthlySale, error)
	// WonDealItems returns the items of deals won with a deal date in the month.
	WonDealItems(ctx context.Context, month generic.YearMonth) ([]DealItem, error)

	SaveCost(ctx context.Context, cost CostEntry) error
	CostsForMonth(ctx context.Context, month generic.YearMonth) ([]CostEntry, error)

	SaveBudget(ctx context.Context, budget BudgetEntry) error
	// BudgetsForMonth returns the month's budgets of the type. A nil category
	// matches every category.
	BudgetsForMonth(ctx context.Context, month generic.YearMonth, budgetType BudgetType, category *string) ([]BudgetEntry, error)
}
