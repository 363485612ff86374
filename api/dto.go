/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request types carry
  raw strings for enums so the handlers can answer with a 400 that names
  the bad value; response types flatten domain structs for the frontend.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers around engine results

MONEY:
  decimal.Decimal accepts both 1234.5 and "1234.5" on input and is written
  as a quoted string on output, so amounts never pass through float64.

SEE ALSO:
  - handlers.go: Uses these types
  - revenue/reporter.go: Report types returned as-is
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/generic"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// FISCAL CALENDAR
// =============================================================================

// FiscalPeriodDTO is the fiscal position of one calendar date.
type FiscalPeriodDTO struct {
	Date          generic.Date `json:"date"`
	FiscalYear    int          `json:"fiscal_year"`
	FiscalQuarter int          `json:"fiscal_quarter"`
	Label         string       `json:"label"`
}

// FiscalRangeDTO is the calendar span of a fiscal year or quarter.
type FiscalRangeDTO struct {
	FiscalYear    int          `json:"fiscal_year"`
	FiscalQuarter *int         `json:"fiscal_quarter,omitempty"`
	StartDate     generic.Date `json:"start_date"`
	EndDate       generic.Date `json:"end_date"`
}

// =============================================================================
// PRORATION
// =============================================================================

// ProrateRequest asks for a schedule without storing anything.
type ProrateRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	StartDate generic.Date    `json:"start_date"`
	EndDate   generic.Date    `json:"end_date"`
}

// ProrateResponse adds the schedule total and its rounding drift.
type ProrateResponse struct {
	generic.ProrationResult
	Total decimal.Decimal `json:"total"`
	Drift decimal.Decimal `json:"drift"`
}

func toProrateResponse(amount decimal.Decimal, result generic.ProrationResult) ProrateResponse {
	return ProrateResponse{
		ProrationResult: result,
		Total:           result.Total(),
		Drift:           result.Drift(amount),
	}
}

// =============================================================================
// DEALS
// =============================================================================

type DealDTO struct {
	ID        string       `json:"id"`
	Customer  string       `json:"customer"`
	Status    string       `json:"status"`
	DealDate  generic.Date `json:"deal_date"`
	CreatedAt string       `json:"created_at,omitempty"`
}

type CreateDealRequest struct {
	ID       string       `json:"id"`
	Customer string       `json:"customer"`
	Status   string       `json:"status"`
	DealDate generic.Date `json:"deal_date"`
}

func toDealDTO(d revenue.Deal) DealDTO {
	return DealDTO{
		ID:        d.ID,
		Customer:  d.Customer,
		Status:    string(d.Status),
		DealDate:  d.DealDate,
		CreatedAt: formatCreated(d.CreatedAt),
	}
}

// =============================================================================
// DEAL ITEMS
// =============================================================================

type DealItemDTO struct {
	ID          string          `json:"id"`
	DealID      string          `json:"deal_id"`
	ProductName string          `json:"product_name"`
	ProductType string          `json:"product_type"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   generic.Date    `json:"start_date"`
	EndDate     generic.Date    `json:"end_date"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

type CreateDealItemRequest struct {
	ID          string          `json:"id"`
	DealID      string          `json:"deal_id"`
	ProductName string          `json:"product_name"`
	ProductType string          `json:"product_type"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   generic.Date    `json:"start_date"`
	EndDate     generic.Date    `json:"end_date"`
}

// DealItemResponse is returned after an item is stored and its schedule posted.
type DealItemResponse struct {
	Item      DealItemDTO     `json:"item"`
	Proration ProrateResponse `json:"proration"`
}

func toDealItemDTO(i revenue.DealItem) DealItemDTO {
	return DealItemDTO{
		ID:          string(i.ID),
		DealID:      i.DealID,
		ProductName: i.ProductName,
		ProductType: string(i.ProductType),
		Amount:      i.Amount,
		StartDate:   i.StartDate,
		EndDate:     i.EndDate,
		CreatedAt:   formatCreated(i.CreatedAt),
	}
}

// AllocationDTO is one stored monthly_sales row.
type AllocationDTO struct {
	ID               string          `json:"id"`
	DealItemID       string          `json:"deal_item_id"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	TotalDaysInMonth int             `json:"total_days_in_month"`
	ApplicableDays   int             `json:"applicable_days"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	Amount           decimal.Decimal `json:"amount"`
}

func toAllocationDTOs(recs []generic.AllocationRecord) []AllocationDTO {
	dtos := make([]AllocationDTO, len(recs))
	for i, r := range recs {
		dtos[i] = AllocationDTO{
			ID:               r.ID,
			DealItemID:       string(r.ContractID),
			Year:             r.Month.Year,
			Month:            int(r.Month.Month),
			TotalDaysInMonth: r.TotalDaysInMonth,
			ApplicableDays:   r.ApplicableDays,
			DailyRate:        r.DailyRate,
			Amount:           r.Amount,
		}
	}
	return dtos
}

// =============================================================================
// BATCH
// =============================================================================

// RecalculateRequest rebuilds one item when DealItemID is set, every item otherwise.
type RecalculateRequest struct {
	DealItemID string `json:"deal_item_id"`
}

// =============================================================================
// COSTS AND BUDGETS
// =============================================================================

type CreateCostRequest struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type CreateBudgetRequest struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// EntryDTO is a stored cost or budget line.
type EntryDTO struct {
	ID          string          `json:"id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
