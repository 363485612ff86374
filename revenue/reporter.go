/*
reporter.go - Monthly and fiscal reports over revenue, cost and budget data

PURPOSE:
  Every report here is one generic.Aggregator pass over a period with one
  of the fetchers in fetchers.go. Monthly, fiscal-quarter and fiscal-year
  reports differ only in the period they fold.

REPORTS:
  RevenueFor*:     license, service and total recognised revenue
  CostFor*:        COGS and SG&A by category with totals
  BudgetAnalysis*: budget vs. actual with difference and achievement rate
  ProfitTrend:     revenue, cost, profit and margin for trailing months
  Summary:         one month's headline figures with change vs. the month before

SEE ALSO:
  - generic/aggregate.go: The fold
  - ratios.go: Percentages
*/
package revenue

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

type RevenueReport struct {
	Period  generic.Period  `json:"period"`
	License decimal.Decimal `json:"license_amount"`
	Service decimal.Decimal `json:"service_amount"`
	Total   decimal.Decimal `json:"total_amount"`
}

type CostReport struct {
	Period       generic.Period  `json:"period"`
	COGSLicense  decimal.Decimal `json:"cogs_license"`
	COGSService  decimal.Decimal `json:"cogs_service"`
	TotalCOGS    decimal.Decimal `json:"total_cogs"`
	SGAPersonnel decimal.Decimal `json:"sga_personnel"`
	SGAOffice    decimal.Decimal `json:"sga_office"`
	SGAMarketing decimal.Decimal `json:"sga_marketing"`
	SGAOther     decimal.Decimal `json:"sga_other"`
	TotalSGA     decimal.Decimal `json:"total_sga"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type BudgetAnalysis struct {
	Period          generic.Period  `json:"period"`
	Type            BudgetType      `json:"type"`
	Category        *string         `json:"category,omitempty"`
	Budget          decimal.Decimal `json:"budget_amount"`
	Actual          decimal.Decimal `json:"actual_amount"`
	Difference      decimal.Decimal `json:"difference"`
	AchievementRate decimal.Decimal `json:"achievement_rate"`
}

type ProfitPoint struct {
	Month        generic.YearMonth `json:"month"`
	Revenue      decimal.Decimal   `json:"revenue"`
	Cost         decimal.Decimal   `json:"cost"`
	Profit       decimal.Decimal   `json:"profit"`
	ProfitMargin decimal.Decimal   `json:"profit_margin"`
}

// Figure is an amount with its change against the previous month.
type Figure struct {
	Amount     decimal.Decimal `json:"amount"`
	ChangeRate decimal.Decimal `json:"change_rate"`
}

type Summary struct {
	Month           generic.YearMonth `json:"month"`
	DealAcquisition Figure            `json:"deal_acquisition"`
	Revenue         Figure            `json:"revenue"`
	Cost            Figure            `json:"cost"`
	Profit          Figure            `json:"profit"`
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter builds reports from a Store.
type Reporter struct {
	Store      Store
	Aggregator generic.Aggregator
	Calendar   generic.FiscalCalendar
}

// NewReporter uses the December-start fiscal calendar.
func NewReporter(store Store, agg generic.Aggregator) *Reporter {
	return &Reporter{Store: store, Aggregator: agg, Calendar: generic.DefaultFiscalCalendar}
}

// FiscalPeriod resolves a fiscal year, or one of its quarters when quarter
// is non-nil, on the reporter's calendar.
func (r *Reporter) FiscalPeriod(fiscalYear int, quarter *int) (generic.Period, error) {
	if quarter == nil {
		return r.Calendar.YearRange(fiscalYear), nil
	}
	return r.Calendar.QuarterRange(fiscalYear, *quarter)
}

// -----------------------------------------------------------------------------
// Revenue
// -----------------------------------------------------------------------------

func (r *Reporter) RevenueForPeriod(ctx context.Context, period generic.Period) (RevenueReport, error) {
	m, err := r.Aggregator.Aggregate(ctx, period, RevenueFetcher{Store: r.Store})
	if err != nil {
		return RevenueReport{}, err
	}
	return RevenueReport{
		Period:  period,
		License: m.Get(FieldLicense),
		Service: m.Get(FieldService),
		Total:   m.Get(FieldRevenue),
	}, nil
}

func (r *Reporter) RevenueForMonth(ctx context.Context, month generic.YearMonth) (RevenueReport, error) {
	return r.RevenueForPeriod(ctx, generic.MonthPeriod(month))
}

func (r *Reporter) RevenueForFiscalYear(ctx context.Context, fiscalYear int) (RevenueReport, error) {
	return r.RevenueForPeriod(ctx, r.Calendar.YearRange(fiscalYear))
}

func (r *Reporter) RevenueForFiscalQuarter(ctx context.Context, fiscalYear, quarter int) (RevenueReport, error) {
	period, err := r.Calendar.QuarterRange(fiscalYear, quarter)
	if err != nil {
		return RevenueReport{}, err
	}
	return r.RevenueForPeriod(ctx, period)
}

// -----------------------------------------------------------------------------
// Cost
// -----------------------------------------------------------------------------

func (r *Reporter) CostForPeriod(ctx context.Context, period generic.Period) (CostReport, error) {
	m, err := r.Aggregator.Aggregate(ctx, period, CostFetcher{Store: r.Store})
	if err != nil {
		return CostReport{}, err
	}
	return CostReport{
		Period:       period,
		COGSLicense:  m.Get(FieldCOGSLicense),
		COGSService:  m.Get(FieldCOGSService),
		TotalCOGS:    m.Get(FieldTotalCOGS),
		SGAPersonnel: m.Get(FieldSGAPersonnel),
		SGAOffice:    m.Get(FieldSGAOffice),
		SGAMarketing: m.Get(FieldSGAMarketing),
		SGAOther:     m.Get(FieldSGAOther),
		TotalSGA:     m.Get(FieldTotalSGA),
		TotalCost:    m.Get(FieldTotalCost),
	}, nil
}

func (r *Reporter) CostForMonth(ctx context.Context, month generic.YearMonth) (CostReport, error) {
	return r.CostForPeriod(ctx, generic.MonthPeriod(month))
}

func (r *Reporter) CostForFiscalYear(ctx context.Context, fiscalYear int) (CostReport, error) {
	return r.CostForPeriod(ctx, r.Calendar.YearRange(fiscalYear))
}

func (r *Reporter) CostForFiscalQuarter(ctx context.Context, fiscalYear, quarter int) (CostReport, error) {
	period, err := r.Calendar.QuarterRange(fiscalYear, quarter)
	if err != nil {
		return CostReport{}, err
	}
	return r.CostForPeriod(ctx, period)
}

// -----------------------------------------------------------------------------
// Budget vs. actual
// -----------------------------------------------------------------------------

// BudgetAnalysis compares the budget of one type (and optional category)
// with the actual figure over the period. The category narrows the budget
// side only; actuals are always the type's total.
func (r *Reporter) BudgetAnalysis(ctx context.Context, period generic.Period, budgetType BudgetType, category *string) (BudgetAnalysis, error) {
	if _, err := ParseBudgetType(string(budgetType)); err != nil {
		return BudgetAnalysis{}, err
	}

	var budget, actual generic.Metrics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budget, err = r.Aggregator.Aggregate(gctx, period, BudgetFetcher{Store: r.Store, Type: budgetType, Category: category})
		return err
	})
	g.Go(func() error {
		var err error
		actual, err = r.Aggregator.Aggregate(gctx, period, ActualFetcher{Store: r.Store, Type: budgetType})
		return err
	})
	if err := g.Wait(); err != nil {
		return BudgetAnalysis{}, err
	}

	b, a := budget.Get(FieldBudget), actual.Get(FieldActual)
	return BudgetAnalysis{
		Period:          period,
		Type:            budgetType,
		Category:        category,
		Budget:          b,
		Actual:          a,
		Difference:      Difference(a, b),
		AchievementRate: AchievementRate(a, b),
	}, nil
}

func (r *Reporter) BudgetAnalysisForMonth(ctx context.Context, month generic.YearMonth, budgetType BudgetType, category *string) (BudgetAnalysis, error) {
	return r.BudgetAnalysis(ctx, generic.MonthPeriod(month), budgetType, category)
}

func (r *Reporter) BudgetAnalysisForFiscalYear(ctx context.Context, fiscalYear int, budgetType BudgetType, category *string) (BudgetAnalysis, error) {
	return r.BudgetAnalysis(ctx, r.Calendar.YearRange(fiscalYear), budgetType, category)
}

func (r *Reporter) BudgetAnalysisForFiscalQuarter(ctx context.Context, fiscalYear, quarter int, budgetType BudgetType, category *string) (BudgetAnalysis, error) {
	period, err := r.Calendar.QuarterRange(fiscalYear, quarter)
	if err != nil {
		return BudgetAnalysis{}, err
	}
	return r.BudgetAnalysis(ctx, period, budgetType, category)
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

// ProfitTrend returns one point per month for the n months ending with end,
// oldest first.
func (r *Reporter) ProfitTrend(ctx context.Context, end generic.YearMonth, months int) ([]ProfitPoint, error) {
	rows, _, err := r.Aggregator.Breakdown(ctx, generic.TrailingMonths(end, months), ProfitFetcher{Store: r.Store})
	if err != nil {
		return nil, err
	}

	points := make([]ProfitPoint, len(rows))
	for i, row := range rows {
		rev, cost := row.Metrics.Get(FieldRevenue), row.Metrics.Get(FieldTotalCost)
		profit := rev.Sub(cost)
		points[i] = ProfitPoint{
			Month:        row.Month,
			Revenue:      rev,
			Cost:         cost,
			Profit:       profit,
			ProfitMargin: ProfitMargin(rev, profit),
		}
	}
	return points, nil
}

// Summary returns the month's deal acquisition, revenue, cost and profit,
// each with its change against the previous month.
func (r *Reporter) Summary(ctx context.Context, month generic.YearMonth) (Summary, error) {
	two := generic.Period{Start: month.Previous().FirstDay(), End: month.LastDay()}

	pl, _, err := r.Aggregator.Breakdown(ctx, two, ProfitFetcher{Store: r.Store})
	if err != nil {
		return Summary{}, err
	}
	deals, _, err := r.Aggregator.Breakdown(ctx, two, ActualFetcher{Store: r.Store, Type: BudgetDealAcquisition})
	if err != nil {
		return Summary{}, err
	}

	prev, cur := pl[0].Metrics, pl[1].Metrics
	profit := func(m generic.Metrics) decimal.Decimal {
		return m.Get(FieldRevenue).Sub(m.Get(FieldTotalCost))
	}
	figure := func(current, previous decimal.Decimal) Figure {
		return Figure{Amount: current, ChangeRate: ChangeRate(current, previous)}
	}

	return Summary{
		Month:           month,
		DealAcquisition: figure(deals[1].Metrics.Get(FieldActual), deals[0].Metrics.Get(FieldActual)),
		Revenue:         figure(cur.Get(FieldRevenue), prev.Get(FieldRevenue)),
		Cost:            figure(cur.Get(FieldTotalCost), prev.Get(FieldTotalCost)),
		Profit:          figure(profit(cur), profit(prev)),
	}, nil
}
