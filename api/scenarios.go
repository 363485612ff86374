/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with deals,
	deal items, costs and budgets. Each scenario exercises a specific
	behaviour of proration or the fiscal calendar so the dashboard has
	something meaningful to show.

AVAILABLE SCENARIOS:

	fiscal-boundary: Items crossing the December fiscal year start
	leap-year:       February 2023 vs. February 2024, leap day included
	full-dashboard:  Deals, costs and budgets for FY2024 Q1

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create deals
 3. Save deal items through the Recalculator (posts monthly rows)
 4. Optionally add cost and budget lines
 5. Flush the report cache

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "fiscal-boundary"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to scenarioLoader

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and report endpoints
  - store/sqlite/sqlite.go: Reset, TableCounts
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fiscal-boundary",
		Name:        "Fiscal Boundary",
		Description: "A license from Jan 31 to Mar 31 and a service split across the November/December fiscal year start",
		Category:    "proration",
	},
	{
		ID:          "leap-year",
		Name:        "Leap Year",
		Description: "February 2024 (29 days) next to February 2023 (28 days), plus an annual contract over the leap day",
		Category:    "proration",
	},
	{
		ID:          "full-dashboard",
		Name:        "Full Dashboard",
		Description: "Won and open deals, COGS and SG&A lines, budgets of every type for FY2024 Q1",
		Category:    "dashboard",
	},
}

// Resetter is implemented by stores that can clear all of their data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// TableCounter is implemented by stores that can report row counts.
type TableCounter interface {
	TableCounts(ctx context.Context) (map[string]int, error)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.loadedScenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current, Description: "Currently loaded scenario"})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load := h.scenarioLoader(req.ScenarioID)
	if load == nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if !h.resetStore(ctx, w) {
		return
	}

	if err := load(ctx); err != nil {
		h.InvalidateReports()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.InvalidateReports()
	h.setLoadedScenario(req.ScenarioID)
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if !h.resetStore(r.Context(), w) {
		return
	}
	h.InvalidateReports()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// GetDBStatus returns the row count of every table.
func (h *Handler) GetDBStatus(w http.ResponseWriter, r *http.Request) {
	counter, ok := h.Store.(TableCounter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not report table counts", nil)
		return
	}
	counts, err := counter.TableCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count rows", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables":   counts,
		"scenario": h.loadedScenario(),
	})
}

func (h *Handler) resetStore(ctx context.Context, w http.ResponseWriter) bool {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return false
	}
	if err := resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return false
	}
	h.setLoadedScenario("")
	return true
}

func (h *Handler) loadedScenario() string {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()
	return h.currentScenario
}

func (h *Handler) setLoadedScenario(id string) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()
	h.currentScenario = id
}

func (h *Handler) scenarioLoader(id string) func(context.Context) error {
	switch id {
	case "fiscal-boundary":
		return h.loadFiscalBoundaryScenario
	case "leap-year":
		return h.loadLeapYearScenario
	case "full-dashboard":
		return h.loadFullDashboardScenario
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFiscalBoundaryScenario(ctx context.Context) error {
	if err := h.Store.SaveDeal(ctx, revenue.Deal{
		ID:       "deal-northwind",
		Customer: "Northwind",
		Status:   revenue.DealWon,
		DealDate: generic.NewDate(2023, time.January, 20),
	}); err != nil {
		return err
	}

	return h.saveItems(ctx,
		// 60 days: Jan 16.67, Feb 466.67, Mar 516.67 (0.01 rounding drift)
		revenue.DealItem{
			ID: "nw-license", DealID: "deal-northwind", ProductName: "Analytics License",
			ProductType: revenue.ProductLicense, Amount: decimal.NewFromInt(1000),
			StartDate: generic.NewDate(2023, time.January, 31), EndDate: generic.NewDate(2023, time.March, 31),
		},
		// 30 days at 100/day: Nov 1,500 lands in FY2023, Dec 1,500 in FY2024 Q1
		revenue.DealItem{
			ID: "nw-service", DealID: "deal-northwind", ProductName: "Migration",
			ProductType: revenue.ProductService, Amount: decimal.NewFromInt(3000),
			StartDate: generic.NewDate(2023, time.November, 16), EndDate: generic.NewDate(2023, time.December, 15),
		},
	)
}

func (h *Handler) loadLeapYearScenario(ctx context.Context) error {
	for _, deal := range []revenue.Deal{
		{ID: "deal-contoso-2023", Customer: "Contoso", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.January, 25)},
		{ID: "deal-contoso-2024", Customer: "Contoso", Status: revenue.DealWon, DealDate: generic.NewDate(2024, time.January, 25)},
	} {
		if err := h.Store.SaveDeal(ctx, deal); err != nil {
			return err
		}
	}

	return h.saveItems(ctx,
		revenue.DealItem{
			ID: "feb-2023", DealID: "deal-contoso-2023", ProductName: "Support",
			ProductType: revenue.ProductService, Amount: decimal.NewFromInt(2800),
			StartDate: generic.NewDate(2023, time.February, 1), EndDate: generic.NewDate(2023, time.February, 28),
		},
		revenue.DealItem{
			ID: "feb-2024", DealID: "deal-contoso-2024", ProductName: "Support",
			ProductType: revenue.ProductService, Amount: decimal.NewFromInt(2900),
			StartDate: generic.NewDate(2024, time.February, 1), EndDate: generic.NewDate(2024, time.February, 29),
		},
		// 366 days at 10/day
		revenue.DealItem{
			ID: "annual-2024", DealID: "deal-contoso-2024", ProductName: "Platform License",
			ProductType: revenue.ProductLicense, Amount: decimal.NewFromInt(3660),
			StartDate: generic.NewDate(2024, time.January, 1), EndDate: generic.NewDate(2024, time.December, 31),
		},
	)
}

func (h *Handler) loadFullDashboardScenario(ctx context.Context) error {
	deals := []revenue.Deal{
		{ID: "deal-acme", Customer: "Acme Corp", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.January, 10)},
		{ID: "deal-globex", Customer: "Globex", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.December, 5)},
		{ID: "deal-initech", Customer: "Initech", Status: revenue.DealOpen, DealDate: generic.NewDate(2024, time.January, 20)},
	}
	for _, deal := range deals {
		if err := h.Store.SaveDeal(ctx, deal); err != nil {
			return err
		}
	}

	err := h.saveItems(ctx,
		revenue.DealItem{
			ID: "acme-license", DealID: "deal-acme", ProductName: "Platform License",
			ProductType: revenue.ProductLicense, Amount: decimal.NewFromInt(1_200_000),
			StartDate: generic.NewDate(2023, time.January, 1), EndDate: generic.NewDate(2023, time.December, 31),
		},
		revenue.DealItem{
			ID: "acme-onboarding", DealID: "deal-acme", ProductName: "Onboarding",
			ProductType: revenue.ProductService, Amount: decimal.NewFromInt(3100),
			StartDate: generic.NewDate(2023, time.December, 1), EndDate: generic.NewDate(2023, time.December, 31),
		},
		// 366 days at 1,000/day
		revenue.DealItem{
			ID: "globex-license", DealID: "deal-globex", ProductName: "Platform License",
			ProductType: revenue.ProductLicense, Amount: decimal.NewFromInt(366_000),
			StartDate: generic.NewDate(2024, time.January, 1), EndDate: generic.NewDate(2024, time.December, 31),
		},
		revenue.DealItem{
			ID: "initech-consulting", DealID: "deal-initech", ProductName: "Consulting",
			ProductType: revenue.ProductService, Amount: decimal.NewFromInt(45_000),
			StartDate: generic.NewDate(2024, time.February, 1), EndDate: generic.NewDate(2024, time.April, 30),
		},
	)
	if err != nil {
		return err
	}

	quarter := []generic.YearMonth{
		{Year: 2023, Month: time.December},
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
	}

	costLines := []struct {
		costType revenue.CostType
		category string
		amount   int64
	}{
		{revenue.CostCOGS, revenue.CategoryLicense, 8_000},
		{revenue.CostCOGS, revenue.CategoryService, 1_500},
		{revenue.CostSGA, revenue.CategoryPersonnel, 40_000},
		{revenue.CostSGA, revenue.CategoryOffice, 5_000},
		{revenue.CostSGA, revenue.CategoryMarketing, 7_500},
		{revenue.CostSGA, "TRAVEL", 1_200},
	}
	for _, month := range quarter {
		for _, line := range costLines {
			if err := h.Store.SaveCost(ctx, revenue.CostEntry{
				ID:       fmt.Sprintf("cost-%s-%s-%s", month, line.costType, line.category),
				Month:    month,
				Type:     line.costType,
				Category: line.category,
				Amount:   decimal.NewFromInt(line.amount),
			}); err != nil {
				return err
			}
		}
	}

	budgetLines := map[revenue.BudgetType]int64{
		revenue.BudgetDealAcquisition: 400_000,
		revenue.BudgetRevenue:         100_000,
		revenue.BudgetCOGS:            10_000,
		revenue.BudgetSGA:             55_000,
		revenue.BudgetProfit:          35_000,
	}
	for _, month := range quarter {
		for _, budgetType := range revenue.BudgetTypes {
			if err := h.Store.SaveBudget(ctx, revenue.BudgetEntry{
				ID:     fmt.Sprintf("budget-%s-%s", month, budgetType),
				Month:  month,
				Type:   budgetType,
				Amount: decimal.NewFromInt(budgetLines[budgetType]),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) saveItems(ctx context.Context, items ...revenue.DealItem) error {
	for _, item := range items {
		if _, err := h.Recalculator.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("scenario item %s: %w", item.ID, err)
		}
	}
	return nil
}
