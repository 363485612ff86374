/*
Package revenue connects the proration and aggregation engines to the
sales dashboard's data: deals and their line items, monthly cost entries
and monthly budgets.

PURPOSE:
  The generic package knows how to spread a contract value over months and
  how to fold per-month metrics into fiscal totals. This package decides
  WHAT is folded: license vs. service revenue, COGS vs. SG&A cost, budget
  against actual. Every report goes through generic.Aggregator.

KEY TYPES:
  Deal, DealItem:  A won (or open) deal and its contract lines
  CostEntry:       One cost line for a calendar month
  BudgetEntry:     One budget line for a calendar month
  Store:           Persistence this package reads and writes

EXAMPLE:
  An item of 1,100,000 (LICENSE) running 2023-01-01 .. 2023-12-31 is
  stored as 12 monthly_sales rows. RevenueForFiscalQuarter(2023, 1) folds
  the rows of Dec 2022, Jan 2023 and Feb 2023, of which Jan and Feb exist.

SEE ALSO:
  - fetchers.go: Per-month metric sources
  - reporter.go: Monthly and fiscal reports
  - recalculate.go: Rebuilding stored monthly rows
*/
package revenue

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// DEALS
// =============================================================================

type DealStatus string

const (
	DealOpen DealStatus = "OPEN"
	DealWon  DealStatus = "WON"
	DealLost DealStatus = "LOST"
)

// Deal groups contract lines sold to one customer. Deal acquisition is
// counted in the month of DealDate once the deal is won.
type Deal struct {
	ID        string
	Customer  string
	Status    DealStatus
	DealDate  generic.Date
	CreatedAt time.Time
}

type ProductType string

const (
	ProductLicense ProductType = "LICENSE"
	ProductService ProductType = "SERVICE"
)

// ParseProductType accepts "LICENSE" or "SERVICE" in any case.
func ParseProductType(s string) (ProductType, error) {
	switch t := ProductType(strings.ToUpper(strings.TrimSpace(s))); t {
	case ProductLicense, ProductService:
		return t, nil
	}
	return "", fmt.Errorf("%w: product type %q must be LICENSE or SERVICE", generic.ErrInvalidKind, s)
}

// DealItem is one contract line. Its amount is recognised over
// [StartDate, EndDate] by day-accurate proration.
type DealItem struct {
	ID          generic.ContractID
	DealID      string
	ProductName string
	ProductType ProductType
	Amount      decimal.Decimal
	StartDate   generic.Date
	EndDate     generic.Date
	CreatedAt   time.Time
}

// Interval returns the contract interval the item is prorated over.
func (i DealItem) Interval() generic.ContractInterval {
	return generic.ContractInterval{Amount: i.Amount, Start: i.StartDate, End: i.EndDate}
}

// MonthlySale is a stored allocation joined with the product type of its item.
type MonthlySale struct {
	DealItemID  generic.ContractID
	ProductType ProductType
	Amount      decimal.Decimal
}

// =============================================================================
// COSTS
// =============================================================================

type CostType string

const (
	CostCOGS CostType = "COGS"
	CostSGA  CostType = "SGA"
)

// Cost categories. COGS uses license/service; SG&A uses the rest, and any
// SG&A category not listed here is reported as "other".
const (
	CategoryLicense   = "LICENSE"
	CategoryService   = "SERVICE"
	CategoryPersonnel = "PERSONNEL"
	CategoryOffice    = "OFFICE"
	CategoryMarketing = "MARKETING"
)

type CostEntry struct {
	ID          string
	Month       generic.YearMonth
	Type        CostType
	Category    string
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// ParseCostType accepts "COGS" or "SGA" in any case.
func ParseCostType(s string) (CostType, error) {
	switch t := CostType(strings.ToUpper(strings.TrimSpace(s))); t {
	case CostCOGS, CostSGA:
		return t, nil
	}
	return "", fmt.Errorf("%w: cost type %q must be COGS or SGA", generic.ErrInvalidKind, s)
}

// =============================================================================
// BUDGETS
// =============================================================================

type BudgetType string

const (
	BudgetDealAcquisition BudgetType = "DEAL_ACQUISITION"
	BudgetRevenue         BudgetType = "REVENUE"
	BudgetCOGS            BudgetType = "COGS"
	BudgetSGA             BudgetType = "SGA"
	BudgetProfit          BudgetType = "PROFIT"
)

// BudgetTypes lists every budget type in display order.
var BudgetTypes = []BudgetType{
	BudgetDealAcquisition, BudgetRevenue, BudgetCOGS, BudgetSGA, BudgetProfit,
}

// ParseBudgetType accepts a budget type name in any case.
func ParseBudgetType(s string) (BudgetType, error) {
	t := BudgetType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range BudgetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", generic.ErrInvalidBudgetType, s)
}

// BudgetEntry is one budget line. An empty Category is the uncategorised
// budget for the type.
type BudgetEntry struct {
	ID          string
	Month       generic.YearMonth
	Type        BudgetType
	Category    string
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}
