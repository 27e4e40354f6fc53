/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontends

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

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.CreateItem)
			r.Get("/low-stock", h.LowStockItems)
			r.Get("/low-stock/report", h.LowStockReport)
			r.Get("/available", h.AvailableItems)
			r.Get("/{code}", h.GetItem)
			r.Put("/{code}", h.UpdateItem)
			r.Delete("/{code}", h.DeleteItem)
			r.Post("/{code}/warehouses", h.AddWarehouse)
			r.Post("/{code}/stock", h.ChangeStock)
			r.Get("/{code}/report", h.ItemStockReport)
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/summary", h.WarehouseSummary)
			r.Get("/{name}/items", h.ItemsInWarehouse)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/overdue", h.OverdueCustomers)
			r.Get("/discounted", h.DiscountedCustomers)
			r.Get("/{code}", h.GetCustomer)
			r.Put("/{code}", h.UpdateCustomer)
			r.Delete("/{code}", h.DeleteCustomer)
			r.Post("/{code}/addresses", h.AddCustomerAddress)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Get("/pending", h.PendingOrders)
			r.Get("/incomplete", h.IncompleteOrders)
			r.Get("/{number}", h.GetOrder)
			r.Post("/{number}/lines", h.AddOrderLine)
			r.Post("/{number}/process", h.ProcessOrder)
			r.Post("/{number}/cancel", h.CancelOrder)
			r.Post("/{number}/status", h.ChangeOrderStatus)
			r.Get("/{number}/reason", h.OrderReason)
			r.Get("/{number}/events", h.OrderEvents)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.SalesReport)
			r.Get("/status-counts", h.StatusCounts)
			r.Get("/top-items", h.TopItems)
		})
	})

	return r
}
