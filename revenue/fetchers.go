package revenue

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
)

// Metric field names produced by the fetchers.
const (
	FieldLicense = "license"
	FieldService = "service"
	FieldRevenue = "total"

	FieldCOGSLicense  = "cogs_license"
	FieldCOGSService  = "cogs_service"
	FieldTotalCOGS    = "total_cogs"
	FieldSGAPersonnel = "sga_personnel"
	FieldSGAOffice    = "sga_office"
	FieldSGAMarketing = "sga_marketing"
	FieldSGAOther     = "sga_other"
	FieldTotalSGA     = "total_sga"
	FieldTotalCost    = "total_cost"

	FieldBudget = "budget"
	FieldActual = "actual"
)

// =============================================================================
// REVENUE
// =============================================================================

// RevenueFetcher sums the month's stored allocations by product type.
type RevenueFetcher struct {
	Store Store
}

func (f RevenueFetcher) FetchMonth(ctx context.Context, month generic.YearMonth) (generic.Metrics, error) {
	sales, err := f.Store.MonthlySales(ctx, month)
	if err != nil {
		return nil, err
	}

	license, service := decimal.Zero, decimal.Zero
	for _, s := range sales {
		switch s.ProductType {
		case ProductLicense:
			license = license.Add(s.Amount)
		case ProductService:
			service = service.Add(s.Amount)
		}
	}

	return generic.Metrics{
		FieldLicense: license,
		FieldService: service,
		FieldRevenue: license.Add(service),
	}, nil
}

// =============================================================================
// COST
// =============================================================================

// CostFetcher splits the month's cost entries into COGS and SG&A categories.
type CostFetcher struct {
	Store Store
}

func (f CostFetcher) FetchMonth(ctx context.Context, month generic.YearMonth) (generic.Metrics, error) {
	costs, err := f.Store.CostsForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	m := generic.Metrics{
		FieldCOGSLicense:  decimal.Zero,
		FieldCOGSService:  decimal.Zero,
		FieldSGAPersonnel: decimal.Zero,
		FieldSGAOffice:    decimal.Zero,
		FieldSGAMarketing: decimal.Zero,
		FieldSGAOther:     decimal.Zero,
	}
	for _, c := range costs {
		if field := costField(c); field != "" {
			m[field] = m[field].Add(c.Amount)
		}
	}

	cogs := m[FieldCOGSLicense].Add(m[FieldCOGSService])
	sga := m[FieldSGAPersonnel].Add(m[FieldSGAOffice]).Add(m[FieldSGAMarketing]).Add(m[FieldSGAOther])
	m[FieldTotalCOGS] = cogs
	m[FieldTotalSGA] = sga
	m[FieldTotalCost] = cogs.Add(sga)
	return m, nil
}

// costField maps an entry to its metric. COGS entries outside license and
// service are not counted, as in the cost report they feed.
func costField(c CostEntry) string {
	switch c.Type {
	case CostCOGS:
		switch c.Category {
		case CategoryLicense:
			return FieldCOGSLicense
		case CategoryService:
			return FieldCOGSService
		}
	case CostSGA:
		switch c.Category {
		case CategoryPersonnel:
			return FieldSGAPersonnel
		case CategoryOffice:
			return FieldSGAOffice
		case CategoryMarketing:
			return FieldSGAMarketing
		default:
			return FieldSGAOther
		}
	}
	return ""
}

// =============================================================================
// BUDGET VS ACTUAL
// =============================================================================

// BudgetFetcher sums the month's budget lines for one type and, when
// Category is set, one category.
type BudgetFetcher struct {
	Store    Store
	Type     BudgetType
	Category *string
}

func (f BudgetFetcher) FetchMonth(ctx context.Context, month generic.YearMonth) (generic.Metrics, error) {
	budgets, err := f.Store.BudgetsForMonth(ctx, month, f.Type, f.Category)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.Amount)
	}
	return generic.Metrics{FieldBudget: total}, nil
}

// ActualFetcher computes the month's actual figure for a budget type:
//
//	DEAL_ACQUISITION  items of deals won in the month
//	REVENUE           recognised revenue
//	COGS, SGA         cost totals
//	PROFIT            revenue minus total cost
type ActualFetcher struct {
	Store Store
	Type  BudgetType
}

func (f ActualFetcher) FetchMonth(ctx context.Context, month generic.YearMonth) (generic.Metrics, error) {
	actual, err := f.actual(ctx, month)
	if err != nil {
		return nil, err
	}
	return generic.Metrics{FieldActual: actual}, nil
}

func (f ActualFetcher) actual(ctx context.Context, month generic.YearMonth) (decimal.Decimal, error) {
	switch f.Type {
	case BudgetDealAcquisition:
		items, err := f.Store.WonDealItems(ctx, month)
		if err != nil {
			return decimal.Zero, err
		}
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.Amount)
		}
		return total, nil

	case BudgetRevenue:
		rev, err := RevenueFetcher{Store: f.Store}.FetchMonth(ctx, month)
		if err != nil {
			return decimal.Zero, err
		}
		return rev.Get(FieldRevenue), nil

	case BudgetCOGS, BudgetSGA:
		cost, err := CostFetcher{Store: f.Store}.FetchMonth(ctx, month)
		if err != nil {
			return decimal.Zero, err
		}
		if f.Type == BudgetCOGS {
			return cost.Get(FieldTotalCOGS), nil
		}
		return cost.Get(FieldTotalSGA), nil

	case BudgetProfit:
		pl, err := ProfitFetcher{Store: f.Store}.FetchMonth(ctx, month)
		if err != nil {
			return decimal.Zero, err
		}
		return pl.Get(FieldRevenue).Sub(pl.Get(FieldTotalCost)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", generic.ErrInvalidBudgetType, f.Type)
}

// =============================================================================
// PROFIT
// =============================================================================

// ProfitFetcher returns the month's revenue total and cost total together.
type ProfitFetcher struct {
	Store Store
}

func (f ProfitFetcher) FetchMonth(ctx context.Context, month generic.YearMonth) (generic.Metrics, error) {
	rev, err := RevenueFetcher{Store: f.Store}.FetchMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	cost, err := CostFetcher{Store: f.Store}.FetchMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	return generic.Metrics{
		FieldRevenue:   rev.Get(FieldRevenue),
		FieldTotalCost: cost.Get(FieldTotalCost),
	}, nil
}

var (
	_ generic.MonthlyFetcher = RevenueFetcher{}
	_ generic.MonthlyFetcher = CostFetcher{}
	_ generic.MonthlyFetcher = BudgetFetcher{}
	_ generic.MonthlyFetcher = ActualFetcher{}
	_ generic.MonthlyFetcher = ProfitFetcher{}
)
