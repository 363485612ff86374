/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Tests that each scenario sets up the expected state:
	- Deals and items are created
	- Monthly rows are posted through the Recalculator
	- Reports over the loaded data match hand-computed figures

These tests double as integration tests of proration, aggregation and
the fiscal calendar over a real SQLite store.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/revenue"
)

type dbStatus struct {
	Tables   map[string]int `json:"tables"`
	Scenario string         `json:"scenario"`
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenario_FiscalBoundary(t *testing.T) {
	// GIVEN: A license from Jan 31 to Mar 31 and a service from Nov 16 to Dec 15
	// WHEN: Loading the scenario
	// THEN: The service splits across FY2023 and FY2024, the license drifts by 0.01

	_, router := newTestHandler(t)
	loadScenario(t, router, "fiscal-boundary")

	rec := do(t, router, http.MethodGet, "/api/revenue?fiscal_year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fy2023 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, fy2023.License.Equal(dec("1000.01")), fy2023.License.String())
	assert.True(t, fy2023.Service.Equal(dec("1500")), fy2023.Service.String())
	assert.True(t, fy2023.Total.Equal(dec("2501.01")), fy2023.Total.String())

	rec = do(t, router, http.MethodGet, "/api/revenue?fiscal_year=2024&fiscal_quarter=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q1 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, q1.License.IsZero())
	assert.True(t, q1.Service.Equal(dec("1500")), q1.Service.String())

	rec = do(t, router, http.MethodGet, "/api/deal-items/nw-license/allocations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows := decode[[]AllocationDTO](t, rec)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Amount.Equal(dec("16.67")), rows[0].Amount.String())
	assert.True(t, rows[1].Amount.Equal(dec("466.67")), rows[1].Amount.String())
	assert.True(t, rows[2].Amount.Equal(dec("516.67")), rows[2].Amount.String())
}

func TestScenario_LeapYear(t *testing.T) {
	// GIVEN: February items in 2023 and 2024, and an annual 2024 license at 10/day
	// WHEN: Loading the scenario
	// THEN: February 2024 counts 29 days, February 2023 counts 28

	_, router := newTestHandler(t)
	loadScenario(t, router, "leap-year")

	rec := do(t, router, http.MethodGet, "/api/revenue?year=2024&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	feb2024 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, feb2024.Service.Equal(dec("2900")), feb2024.Service.String())
	assert.True(t, feb2024.License.Equal(dec("290")), feb2024.License.String())

	rec = do(t, router, http.MethodGet, "/api/revenue?year=2023&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[revenue.RevenueReport](t, rec).Total.Equal(dec("2800")))

	// FY2024 runs 2023-12-01 .. 2024-11-30, so December 2024 (310) falls outside
	rec = do(t, router, http.MethodGet, "/api/revenue?fiscal_year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fy2024 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, fy2024.License.Equal(dec("3350")), fy2024.License.String())
	assert.True(t, fy2024.Total.Equal(dec("6250")), fy2024.Total.String())
}

func TestScenario_FullDashboard(t *testing.T) {
	// GIVEN: Three deals, six cost lines and five budgets per month of FY2024 Q1
	// WHEN: Loading the scenario
	// THEN: Revenue, cost and budget reports reflect every line

	_, router := newTestHandler(t)
	loadScenario(t, router, "full-dashboard")

	rec := do(t, router, http.MethodGet, "/api/admin/db-status", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode[dbStatus](t, rec)
	assert.Equal(t, "full-dashboard", status.Scenario)
	assert.Equal(t, map[string]int{
		"deals":         3,
		"deal_items":    4,
		"monthly_sales": 28,
		"costs":         18,
		"budgets":       15,
	}, status.Tables)

	rec = do(t, router, http.MethodGet, "/api/revenue?year=2023&month=12", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dec2023 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, dec2023.License.Equal(dec("101917.81")), dec2023.License.String())
	assert.True(t, dec2023.Total.Equal(dec("105017.81")), dec2023.Total.String())

	rec = do(t, router, http.MethodGet, "/api/revenue?fiscal_year=2024&fiscal_quarter=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q1 := decode[revenue.RevenueReport](t, rec)
	assert.True(t, q1.License.Equal(dec("161917.81")), q1.License.String())
	assert.True(t, q1.Service.Equal(dec("17600")), q1.Service.String())
	assert.True(t, q1.Total.Equal(dec("179517.81")), q1.Total.String())

	rec = do(t, router, http.MethodGet, "/api/costs?fiscal_year=2024&fiscal_quarter=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	costs := decode[revenue.CostReport](t, rec)
	assert.True(t, costs.TotalCOGS.Equal(dec("28500")), costs.TotalCOGS.String())
	assert.True(t, costs.SGAOther.Equal(dec("3600")), costs.SGAOther.String())
	assert.True(t, costs.TotalSGA.Equal(dec("161100")), costs.TotalSGA.String())
	assert.True(t, costs.TotalCost.Equal(dec("189600")), costs.TotalCost.String())

	rec = do(t, router, http.MethodGet, "/api/budget-analysis?fiscal_year=2024&fiscal_quarter=1&type=REVENUE", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	analysis := decode[revenue.BudgetAnalysis](t, rec)
	assert.True(t, analysis.Budget.Equal(dec("300000")), analysis.Budget.String())
	assert.True(t, analysis.Difference.Equal(dec("-120482.19")), analysis.Difference.String())
	assert.True(t, analysis.AchievementRate.Equal(dec("59.84")), analysis.AchievementRate.String())

	// The open Initech deal is not acquisition
	rec = do(t, router, http.MethodGet, "/api/budget-analysis?fiscal_year=2024&fiscal_quarter=1&type=DEAL_ACQUISITION", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	acquisition := decode[revenue.BudgetAnalysis](t, rec)
	assert.True(t, acquisition.Actual.Equal(dec("366000")), acquisition.Actual.String())
}

func TestScenario_ListAndCurrent(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, len(scenarios))
	assert.Equal(t, "fiscal-boundary", list[0].ID)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[*ScenarioDTO](t, rec))

	loadScenario(t, router, "leap-year")

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[*ScenarioDTO](t, rec)
	require.NotNil(t, current)
	assert.Equal(t, "Leap Year", current.Name)
}

func TestScenario_LoadReplacesPreviousData(t *testing.T) {
	// GIVEN: The fiscal-boundary scenario is loaded
	// WHEN: Loading leap-year
	// THEN: The first scenario's items are gone

	_, router := newTestHandler(t)
	loadScenario(t, router, "fiscal-boundary")
	loadScenario(t, router, "leap-year")

	rec := do(t, router, http.MethodGet, "/api/deal-items/nw-license", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/deal-items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]DealItemDTO](t, rec), 3)
}

func TestScenario_LoadFlushesReportCache(t *testing.T) {
	h, router := newTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/revenue?year=2024&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[revenue.RevenueReport](t, rec).Total.IsZero())
	assert.Equal(t, 1, h.reports.ItemCount())

	loadScenario(t, router, "leap-year")
	assert.Equal(t, 0, h.reports.ItemCount())

	rec = do(t, router, http.MethodGet, "/api/revenue?year=2024&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[revenue.RevenueReport](t, rec).Total.Equal(dec("3190")))
}

func TestScenario_Reset(t *testing.T) {
	_, router := newTestHandler(t)
	loadScenario(t, router, "full-dashboard")

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/admin/db-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[dbStatus](t, rec)
	assert.Empty(t, status.Scenario)
	for table, n := range status.Tables {
		assert.Zero(t, n, table)
	}
}

func TestScenario_LoadErrors(t *testing.T) {
	_, router := newTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "no-such-scenario"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown scenario", decode[ErrorResponse](t, rec).Error)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	// GIVEN: All available scenarios
	// WHEN: Loading each scenario into an empty store
	// THEN: None should error

	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			h, _ := newTestHandler(t)
			load := h.scenarioLoader(s.ID)
			require.NotNil(t, load)
			assert.NoError(t, load(context.Background()))
		})
	}
}
