package generic

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// METRICS - Named numeric fields for one month or one period
// =============================================================================

// Metrics maps a field name (e.g. "license", "total_cost") to its value.
type Metrics map[string]decimal.Decimal

// Get returns the field, or zero when it is absent.
func (m Metrics) Get(field string) decimal.Decimal {
	if v, ok := m[field]; ok {
		return v
	}
	return decimal.Zero
}

// Add folds other into m field by field.
func (m Metrics) Add(other Metrics) {
	for k, v := range other {
		m[k] = m.Get(k).Add(v)
	}
}

func (m Metrics) Clone() Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Fields returns the field names in sorted order.
func (m Metrics) Fields() []string {
	fields := make([]string, 0, len(m))
	for k := range m {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// MonthMetrics pairs a month with the metrics fetched for it.
type MonthMetrics struct {
	Month   YearMonth `json:"month"`
	Metrics Metrics   `json:"metrics"`
}

// =============================================================================
// MONTHLY FETCHER - Injected source of per-month data
// =============================================================================

// MonthlyFetcher loads the metrics of one calendar month. Implementations
// query revenue, cost or budget data; the engine does not know which.
// Any timeout policy belongs to the fetcher and the context it is given.
type MonthlyFetcher interface {
	FetchMonth(ctx context.Context, month YearMonth) (Metrics, error)
}

// MonthlyFetcherFunc adapts a function to MonthlyFetcher.
type MonthlyFetcherFunc func(ctx context.Context, month YearMonth) (Metrics, error)

func (f MonthlyFetcherFunc) FetchMonth(ctx context.Context, month YearMonth) (Metrics, error) {
	return f(ctx, month)
}

// =============================================================================
// AGGREGATOR - Sum per-month metrics over a period
// =============================================================================

// DefaultConcurrency bounds parallel fetches when Aggregator.Concurrency is 0.
const DefaultConcurrency = 4

// Aggregator is the one place every report folds months into a total.
// The zero value is ready to use.
type Aggregator struct {
	// Concurrency is the maximum number of in-flight fetches. 1 fetches
	// sequentially.
	Concurrency int
}

func (a Aggregator) limit() int {
	if a.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return a.Concurrency
}

// Aggregate sums every field returned by fetcher over the months of period.
func (a Aggregator) Aggregate(ctx context.Context, period Period, fetcher MonthlyFetcher) (Metrics, error) {
	_, total, err := a.Breakdown(ctx, period, fetcher)
	return total, err
}

// Breakdown returns the per-month metrics in month order together with their
// total. Fetches may complete in any order; results are folded in month order
// so the output does not depend on scheduling. The first failure cancels the
// remaining fetches and is returned as a *FetchError.
func (a Aggregator) Breakdown(ctx context.Context, period Period, fetcher MonthlyFetcher) ([]MonthMetrics, Metrics, error) {
	if err := period.Validate(); err != nil {
		return nil, nil, err
	}

	months := period.Months()
	rows := make([]MonthMetrics, len(months))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit())
	for i, ym := range months {
		i, ym := i, ym
		g.Go(func() error {
			m, err := fetcher.FetchMonth(gctx, ym)
			if err != nil {
				return &FetchError{Month: ym, Err: err}
			}
			if m == nil {
				m = Metrics{}
			}
			rows[i] = MonthMetrics{Month: ym, Metrics: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := Metrics{}
	for _, row := range rows {
		total.Add(row.Metrics)
	}
	return rows, total, nil
}
