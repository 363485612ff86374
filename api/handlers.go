/*
handlers.go - HTTP API handlers for the revenue engine

PURPOSE:
  Exposes proration, the fiscal calendar and the revenue reports via REST.
  Handles HTTP request/response and JSON, and delegates to the generic and
  revenue packages.

ENDPOINTS:
  Fiscal calendar:
    GET    /api/fiscal?date=YYYY-MM-DD                 Fiscal year/quarter of a date
    GET    /api/fiscal/range?fiscal_year=&fiscal_quarter=  Calendar span

  Proration:
    POST   /api/prorate                    Schedule for an amount, nothing stored

  Deals:
    POST   /api/deals                      Create or update a deal
    GET    /api/deals/{id}                 Get a deal
    GET    /api/deal-items                 List items
    POST   /api/deal-items                 Create or update an item, post its schedule
    GET    /api/deal-items/{id}            Get an item
    DELETE /api/deal-items/{id}            Delete an item and its rows
    GET    /api/deal-items/{id}/allocations Stored monthly rows

  Batch:
    POST   /api/batch/recalculate          One item (deal_item_id) or all
    POST   /api/batch/recalculate-all      Every item

  Reports (year+month, or fiscal_year[+fiscal_quarter]):
    GET    /api/revenue
    GET    /api/costs
    GET    /api/budget-analysis?type=&category=
    GET    /api/dashboard/trend?year=&month=&months=
    GET    /api/dashboard/summary?year=&month=

  Entries:
    POST   /api/costs                      Add a cost line
    POST   /api/budgets                    Add a budget line

  Scenarios and admin (scenarios.go):
    GET    /api/scenarios                  List demo scenarios
    GET    /api/scenarios/current          Loaded scenario, or null
    POST   /api/scenarios/load             Reset and load a scenario
    POST   /api/scenarios/reset            Clear all data
    GET    /api/admin/db-status            Row count per table

CACHING:
  Report responses are cached per URL for the configured TTL. Any write
  or recalculation flushes the whole cache.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Deal or deal item not found
  - 409: Conflict (duplicate monthly row)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"

	"github.com/warp/revenue-engine/generic"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        revenue.Store
	Reporter     *revenue.Reporter
	Recalculator *revenue.Recalculator
	Logger       *slog.Logger

	// Report cache; nil disables caching. reportsGen is bumped on every
	// flush so a report built across a write is never stored.
	reports    *cache.Cache
	reportsMu  sync.Mutex
	reportsGen uint64

	// Today's date, for report defaults
	today func() generic.Date

	// Demo scenario currently loaded, "" after a reset
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler wires a handler over the store. A zero cacheTTL disables the
// report cache; a nil logger discards output.
func NewHandler(store revenue.Store, agg generic.Aggregator, cacheTTL time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Handler{
		Store:        store,
		Reporter:     revenue.NewReporter(store, agg),
		Recalculator: revenue.NewRecalculator(store, logger),
		Logger:       logger.With("component", "api"),
		today:        generic.Today,
	}
	if cacheTTL > 0 {
		h.reports = cache.New(cacheTTL, 2*cacheTTL)
	}
	return h
}

// InvalidateReports drops every cached report.
func (h *Handler) InvalidateReports() {
	if h.reports == nil {
		return
	}
	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	h.reportsGen++
	h.reports.Flush()
}

func (h *Handler) reportGeneration() uint64 {
	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	return h.reportsGen
}

// cachedReport serves a report from the cache, building and storing it on a miss.
func (h *Handler) cachedReport(r *http.Request, build func() (any, error)) (any, error) {
	if h.reports == nil {
		return build()
	}
	key := r.URL.Path + "?" + r.URL.Query().Encode()
	if v, ok := h.reports.Get(key); ok {
		return v, nil
	}
	gen := h.reportGeneration()
	v, err := build()
	if err != nil {
		return nil, err
	}

	h.reportsMu.Lock()
	defer h.reportsMu.Unlock()
	if h.reportsGen == gen {
		h.reports.SetDefault(key, v)
	}
	return v, nil
}

// =============================================================================
// FISCAL CALENDAR HANDLERS
// =============================================================================

// GetFiscalPeriod returns the fiscal year and quarter of a date.
func (h *Handler) GetFiscalPeriod(w http.ResponseWriter, r *http.Request) {
	date, err := generic.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	fp := h.Reporter.Calendar.PeriodOf(date)
	writeJSON(w, http.StatusOK, FiscalPeriodDTO{
		Date:          date,
		FiscalYear:    fp.Year,
		FiscalQuarter: fp.Quarter,
		Label:         fp.String(),
	})
}

// GetFiscalRange returns the calendar span of a fiscal year or quarter.
func (h *Handler) GetFiscalRange(w http.ResponseWriter, r *http.Request) {
	fy, quarter, err := fiscalParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fiscal period", err)
		return
	}
	if fy == nil {
		writeError(w, http.StatusBadRequest, "fiscal_year is required", nil)
		return
	}

	period, err := h.Reporter.FiscalPeriod(*fy, quarter)
	if err != nil {
		h.writeDomainError(w, "Invalid fiscal period", err)
		return
	}
	writeJSON(w, http.StatusOK, FiscalRangeDTO{
		FiscalYear:    *fy,
		FiscalQuarter: quarter,
		StartDate:     period.Start,
		EndDate:       period.End,
	})
}

// =============================================================================
// PRORATION HANDLERS
// =============================================================================

// Prorate returns the monthly schedule for an amount without storing it.
func (h *Handler) Prorate(w http.ResponseWriter, r *http.Request) {
	var req ProrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := generic.Prorate(req.Amount, req.StartDate, req.EndDate)
	if err != nil {
		h.writeDomainError(w, "Failed to prorate", err)
		return
	}
	writeJSON(w, http.StatusOK, toProrateResponse(req.Amount, result))
}

// =============================================================================
// DEAL HANDLERS
// =============================================================================

// CreateDeal creates or updates a deal.
func (h *Handler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DealDate.IsZero() {
		writeError(w, http.StatusBadRequest, "deal_date is required", nil)
		return
	}

	status := revenue.DealStatus(strings.ToUpper(req.Status))
	switch status {
	case "":
		status = revenue.DealOpen
	case revenue.DealOpen, revenue.DealWon, revenue.DealLost:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status (use OPEN, WON or LOST)", nil)
		return
	}

	deal := revenue.Deal{
		ID:        req.ID,
		Customer:  req.Customer,
		Status:    status,
		DealDate:  req.DealDate,
		CreatedAt: time.Now().UTC(),
	}
	if deal.ID == "" {
		deal.ID = ulid.Make().String()
	}

	if err := h.Store.SaveDeal(r.Context(), deal); err != nil {
		h.writeDomainError(w, "Failed to save deal", err)
		return
	}
	h.InvalidateReports()

	writeJSON(w, http.StatusCreated, toDealDTO(deal))
}

// GetDeal returns a single deal.
func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := h.Store.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to get deal", err)
		return
	}
	if deal == nil {
		writeError(w, http.StatusNotFound, "Deal not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDealDTO(*deal))
}

// =============================================================================
// DEAL ITEM HANDLERS
// =============================================================================

// ListDealItems returns every deal item.
func (h *Handler) ListDealItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDealItems(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list deal items", err)
		return
	}

	dtos := make([]DealItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toDealItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDealItem stores an item and posts its monthly schedule.
func (h *Handler) CreateDealItem(w http.ResponseWriter, r *http.Request) {
	var req CreateDealItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := revenue.DealItem{
		ID:          generic.ContractID(req.ID),
		DealID:      req.DealID,
		ProductName: req.ProductName,
		ProductType: revenue.ProductType(req.ProductType),
		Amount:      req.Amount,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now().UTC(),
	}
	if item.ID == "" {
		item.ID = generic.ContractID(ulid.Make().String())
	}
	if pt, err := revenue.ParseProductType(req.ProductType); err == nil {
		item.ProductType = pt
	}

	result, err := h.Recalculator.SaveItem(r.Context(), item)
	if err != nil {
		h.writeDomainError(w, "Failed to save deal item", err)
		return
	}
	h.InvalidateReports()

	writeJSON(w, http.StatusCreated, DealItemResponse{
		Item:      toDealItemDTO(item),
		Proration: toProrateResponse(item.Amount, result),
	})
}

// GetDealItem returns a single deal item.
func (h *Handler) GetDealItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Store.GetDealItem(r.Context(), generic.ContractID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get deal item", err)
		return
	}
	writeJSON(w, http.StatusOK, toDealItemDTO(*item))
}

// GetAllocations returns an item's stored monthly rows.
func (h *Handler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.ContractID(chi.URLParam(r, "id"))

	recs, err := h.Recalculator.Schedule(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to load allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTOs(recs))
}

// DeleteDealItem removes an item and its monthly rows.
func (h *Handler) DeleteDealItem(w http.ResponseWriter, r *http.Request) {
	id := generic.ContractID(chi.URLParam(r, "id"))
	if err := h.Recalculator.RemoveItem(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete deal item", err)
		return
	}
	h.InvalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BATCH HANDLERS
// =============================================================================

// Recalculate rebuilds one item's rows, or every item's when no id is given.
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DealItemID == "" {
		h.RecalculateAll(w, r)
		return
	}

	result, err := h.Recalculator.RecalculateItem(r.Context(), generic.ContractID(req.DealItemID))
	if err != nil {
		h.writeDomainError(w, "Failed to recalculate deal item", err)
		return
	}
	h.InvalidateReports()

	item, err := h.Store.GetDealItem(r.Context(), generic.ContractID(req.DealItemID))
	if err != nil {
		h.writeDomainError(w, "Failed to get deal item", err)
		return
	}
	writeJSON(w, http.StatusOK, toProrateResponse(item.Amount, result))
}

// RecalculateAll rebuilds every item's rows and reports per-item failures.
func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Recalculator.RecalculateAll(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to recalculate", err)
		return
	}
	h.InvalidateReports()
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetRevenue returns license, service and total revenue for a period.
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := h.reportPeriod(r)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}

	report, err := h.cachedReport(r, func() (any, error) {
		return h.Reporter.RevenueForPeriod(r.Context(), period)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to build revenue report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetCosts returns COGS and SG&A by category for a period.
func (h *Handler) GetCosts(w http.ResponseWriter, r *http.Request) {
	period, err := h.reportPeriod(r)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}

	report, err := h.cachedReport(r, func() (any, error) {
		return h.Reporter.CostForPeriod(r.Context(), period)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to build cost report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetBudgetAnalysis compares budget and actual for one budget type.
func (h *Handler) GetBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	budgetType, err := revenue.ParseBudgetType(q.Get("type"))
	if err != nil {
		h.writeDomainError(w, "Invalid budget type", err)
		return
	}
	var category *string
	if q.Has("category") {
		c := q.Get("category")
		category = &c
	}

	period, err := h.reportPeriod(r)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}

	report, err := h.cachedReport(r, func() (any, error) {
		return h.Reporter.BudgetAnalysis(r.Context(), period, budgetType, category)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to build budget analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetProfitTrend returns revenue, cost and profit for the trailing months.
func (h *Handler) GetProfitTrend(w http.ResponseWriter, r *http.Request) {
	end, err := h.monthParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid month", err)
		return
	}
	months := 12
	if s := r.URL.Query().Get("months"); s != "" {
		if months, err = strconv.Atoi(s); err != nil || months < 1 || months > 120 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 120", err)
			return
		}
	}

	trend, err := h.cachedReport(r, func() (any, error) {
		return h.Reporter.ProfitTrend(r.Context(), end, months)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to build profit trend", err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// GetSummary returns a month's headline figures against the month before.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		h.writeDomainError(w, "Invalid month", err)
		return
	}

	summary, err := h.cachedReport(r, func() (any, error) {
		return h.Reporter.Summary(r.Context(), month)
	})
	if err != nil {
		h.writeDomainError(w, "Failed to build summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// CreateCost stores a cost line.
func (h *Handler) CreateCost(w http.ResponseWriter, r *http.Request) {
	var req CreateCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month, err := generic.NewYearMonth(req.Year, time.Month(req.Month))
	if err != nil {
		h.writeDomainError(w, "Invalid month", err)
		return
	}
	costType, err := revenue.ParseCostType(req.Type)
	if err != nil {
		h.writeDomainError(w, "Invalid cost type", err)
		return
	}

	entry := revenue.CostEntry{
		ID:          ulid.Make().String(),
		Month:       month,
		Type:        costType,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveCost(r.Context(), entry); err != nil {
		h.writeDomainError(w, "Failed to save cost", err)
		return
	}
	h.InvalidateReports()

	writeJSON(w, http.StatusCreated, EntryDTO{
		ID:          entry.ID,
		Year:        month.Year,
		Month:       int(month.Month),
		Type:        string(entry.Type),
		Category:    entry.Category,
		Amount:      entry.Amount,
		Description: entry.Description,
	})
}

// CreateBudget stores a budget line.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	month, err := generic.NewYearMonth(req.Year, time.Month(req.Month))
	if err != nil {
		h.writeDomainError(w, "Invalid month", err)
		return
	}
	budgetType, err := revenue.ParseBudgetType(req.Type)
	if err != nil {
		h.writeDomainError(w, "Invalid budget type", err)
		return
	}

	entry := revenue.BudgetEntry{
		ID:          ulid.Make().String(),
		Month:       month,
		Type:        budgetType,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveBudget(r.Context(), entry); err != nil {
		h.writeDomainError(w, "Failed to save budget", err)
		return
	}
	h.InvalidateReports()

	writeJSON(w, http.StatusCreated, EntryDTO{
		ID:          entry.ID,
		Year:        month.Year,
		Month:       int(month.Month),
		Type:        string(entry.Type),
		Category:    entry.Category,
		Amount:      entry.Amount,
		Description: entry.Description,
	})
}

// =============================================================================
// QUERY PARAMETERS
// =============================================================================

// reportPeriod reads year+month, or fiscal_year with an optional fiscal_quarter.
func (h *Handler) reportPeriod(r *http.Request) (generic.Period, error) {
	fy, quarter, err := fiscalParams(r)
	if err != nil {
		return generic.Period{}, err
	}
	if fy != nil {
		return h.Reporter.FiscalPeriod(*fy, quarter)
	}

	q := r.URL.Query()
	if q.Get("year") == "" || q.Get("month") == "" {
		return generic.Period{}, fmt.Errorf("%w: give year and month, or fiscal_year", generic.ErrInvalidPeriod)
	}
	month, err := h.monthParam(r)
	if err != nil {
		return generic.Period{}, err
	}
	return generic.MonthPeriod(month), nil
}

// monthParam reads year and month, defaulting to the current month.
func (h *Handler) monthParam(r *http.Request) (generic.YearMonth, error) {
	q := r.URL.Query()
	current := h.today().YearMonth()
	if q.Get("year") == "" && q.Get("month") == "" {
		return current, nil
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return generic.YearMonth{}, fmt.Errorf("%w: year %q", generic.ErrInvalidMonth, q.Get("year"))
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return generic.YearMonth{}, fmt.Errorf("%w: month %q", generic.ErrInvalidMonth, q.Get("month"))
	}
	return generic.NewYearMonth(year, time.Month(month))
}

// fiscalParams returns nil for a missing fiscal_year or fiscal_quarter. A
// fiscal_quarter without a fiscal_year is rejected.
func fiscalParams(r *http.Request) (fiscalYear, quarter *int, err error) {
	q := r.URL.Query()
	if s := q.Get("fiscal_year"); s != "" {
		fy, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fiscal_year %q", generic.ErrInvalidPeriod, s)
		}
		fiscalYear = &fy
	}
	if s := q.Get("fiscal_quarter"); s != "" {
		fq, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fiscal_quarter %q", generic.ErrInvalidQuarter, s)
		}
		quarter = &fq
	}
	if quarter != nil && fiscalYear == nil {
		return nil, nil, fmt.Errorf("%w: fiscal_quarter requires fiscal_year", generic.ErrInvalidPeriod)
	}
	return fiscalYear, quarter, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's classification.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.Error(message, "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
