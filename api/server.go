/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/fiscal/*       Fiscal calendar lookups
  /api/prorate        Stateless proration
  /api/deals/*        Deals
  /api/deal-items/*   Deal items and their monthly rows
  /api/batch/*        Recalculation
  /api/revenue, /api/costs, /api/budgets, /api/budget-analysis
  /api/dashboard/*    Trend and summary
  /api/scenarios/*    Demo data (resets the database)
  /api/admin/*        Database status

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		// Fiscal calendar
		r.Route("/fiscal", func(r chi.Router) {
			r.Get("/", h.GetFiscalPeriod)
			r.Get("/range", h.GetFiscalRange)
		})

		r.Post("/prorate", h.Prorate)

		// Deals
		r.Route("/deals", func(r chi.Router) {
			r.Post("/", h.CreateDeal)
			r.Get("/{id}", h.GetDeal)
		})

		// Deal items
		r.Route("/deal-items", func(r chi.Router) {
			r.Get("/", h.ListDealItems)
			r.Post("/", h.CreateDealItem)
			r.Get("/{id}", h.GetDealItem)
			r.Delete("/{id}", h.DeleteDealItem)
			r.Get("/{id}/allocations", h.GetAllocations)
		})

		// Batch
		r.Route("/batch", func(r chi.Router) {
			r.Post("/recalculate", h.Recalculate)
			r.Post("/recalculate-all", h.RecalculateAll)
		})

		// Reports and entries
		r.Get("/revenue", h.GetRevenue)
		r.Get("/costs", h.GetCosts)
		r.Post("/costs", h.CreateCost)
		r.Post("/budgets", h.CreateBudget)
		r.Get("/budget-analysis", h.GetBudgetAnalysis)

		// Dashboard
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/trend", h.GetProfitTrend)
			r.Get("/summary", h.GetSummary)
		})

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})

		// Admin
		r.Get("/admin/db-status", h.GetDBStatus)
	})

	return r
}
