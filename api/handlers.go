/*
handlers.go - HTTP handlers for the order management API

PURPOSE:
  Exposes the catalog, customer ledger, and order engine over REST.
  Handlers parse input, delegate to the services, and map domain errors
  to HTTP status codes.

ERROR MAPPING:
  400: malformed JSON, invalid quantities or parameters
  404: unknown item/customer/order code
  409: duplicate code on create
  422: business-rule failure (not processable, invalid transition,
       wrong state for the operation) — the reason travels in the body

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
)

// Handler holds the service dependencies for all HTTP handlers.
type Handler struct {
	Catalog   *catalog.Service
	Customers *customers.Service
	Engine    *orders.Engine
	Log       *zap.Logger
}

// NewHandler creates a handler. A nil logger is replaced by a nop.
func NewHandler(cat *catalog.Service, cust *customers.Service, eng *orders.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Catalog: cat, Customers: cust, Engine: eng, Log: log}
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("failed to encode response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case orders.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateCode),
		errors.Is(err, customers.ErrDuplicateCode):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidItem),
		errors.Is(err, customers.ErrInvalidCustomer),
		errors.Is(err, orders.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, orders.ErrNotProcessable),
		errors.Is(err, orders.ErrInvalidState),
		errors.Is(err, orders.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toItemDTOs(h.Catalog.List()))
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	it := catalog.NewItem(req.Code, req.Name, req.Description, req.Price)
	for _, wh := range req.Warehouses {
		it.AddWarehouse(wh.Name, wh.Stock, wh.MinStock)
	}
	if err := h.Catalog.Add(it); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toItemDTO(it))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.Catalog.Find(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItemDTO(it))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	it := catalog.NewItem(chi.URLParam(r, "code"), req.Name, req.Description, req.Price)
	for _, wh := range req.Warehouses {
		it.AddWarehouse(wh.Name, wh.Stock, wh.MinStock)
	}
	if err := h.Catalog.Update(it); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItemDTO(it))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Remove(chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddWarehouse(w http.ResponseWriter, r *http.Request) {
	var req AddWarehouseRequest
	if !h.decode(w, r, &req) {
		return
	}
	it, err := h.Catalog.Find(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	it.AddWarehouse(req.Name, req.Stock, req.MinStock)
	if err := h.Catalog.Update(it); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItemDTO(it))
}

func (h *Handler) ChangeStock(w http.ResponseWriter, r *http.Request) {
	var req StockChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	code := chi.URLParam(r, "code")

	var err error
	switch req.Op {
	case "adjust":
		err = h.Catalog.AdjustStock(code, req.Warehouse, req.Quantity)
	case "set":
		err = h.Catalog.SetStock(code, req.Warehouse, req.Quantity)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "op must be \"adjust\" or \"set\""})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	it, err := h.Catalog.Find(code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItemDTO(it))
}

func (h *Handler) LowStockItems(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toItemDTOs(h.Catalog.NeedingRestock()))
}

func (h *Handler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.Catalog.FullLowStockReport()))
}

func (h *Handler) ItemStockReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.Catalog.MissingUnitsReport(chi.URLParam(r, "code"))))
}

func (h *Handler) AvailableItems(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toItemDTOs(h.Catalog.Available()))
}

func (h *Handler) ItemsInWarehouse(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toItemDTOs(h.Catalog.InWarehouse(chi.URLParam(r, "name"))))
}

func (h *Handler) WarehouseSummary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Catalog.TotalByWarehouse())
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toCustomerDTOs(h.Customers.List()))
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	c := customers.New(req.Code, req.Name, req.CreditLimit, req.DiscountPercent)
	for _, a := range req.Addresses {
		c.AddShippingAddress(a)
	}
	if err := h.Customers.Add(c); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Find(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	code := chi.URLParam(r, "code")
	existing, err := h.Customers.Find(code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	c := customers.New(code, req.Name, req.CreditLimit, req.DiscountPercent)
	c.Balance = existing.Balance // balance only moves via the order engine
	c.SetOrders(existing.Orders())
	c.SetShippingAddresses(req.Addresses)
	if err := h.Customers.Update(c); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Customers.Remove(chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddCustomerAddress(w http.ResponseWriter, r *http.Request) {
	var req AddAddressRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Customers.Find(chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	c.AddShippingAddress(req.Address)
	if err := h.Customers.Update(c); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

func (h *Handler) OverdueCustomers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toCustomerDTOs(h.Customers.Overdue()))
}

func (h *Handler) DiscountedCustomers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toCustomerDTOs(h.Customers.WithDiscount()))
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if customer := q.Get("customer"); customer != "" {
		h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.ByCustomer(customer)))
		return
	}
	if status := q.Get("status"); status != "" {
		h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.ByStatus(orders.Status(status))))
		return
	}
	if date := q.Get("date"); date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
			return
		}
		h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.OnDate(d)))
		return
	}
	if from, to := q.Get("from"), q.Get("to"); from != "" && to != "" {
		f, err1 := time.Parse("2006-01-02", from)
		t, err2 := time.Parse("2006-01-02", to)
		if err1 != nil || err2 != nil {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "from/to must be YYYY-MM-DD"})
			return
		}
		h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.Between(f, t)))
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.List()))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	number, err := h.Engine.Create(req.CustomerCode, req.ShippingAddress)
	if err != nil {
		h.writeError(w, err)
		return
	}
	o, err := h.Engine.Find(number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Engine.Find(chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) AddOrderLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	number := chi.URLParam(r, "number")
	if err := h.Engine.AddLine(number, req.ItemCode, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	o, err := h.Engine.Find(number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := h.Engine.Process(number); err != nil {
		h.writeError(w, err)
		return
	}
	o, err := h.Engine.Find(number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := h.Engine.Cancel(number); err != nil {
		h.writeError(w, err)
		return
	}
	o, err := h.Engine.Find(number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	number := chi.URLParam(r, "number")
	if err := h.Engine.ChangeStatus(number, orders.Status(req.Status)); err != nil {
		h.writeError(w, err)
		return
	}
	o, err := h.Engine.Find(number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) OrderReason(w http.ResponseWriter, r *http.Request) {
	reason, err := h.Engine.ReasonNotProcessable(chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"reason": reason})
}

func (h *Handler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := h.Engine.Events(chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEventDTOs(evs))
}

func (h *Handler) PendingOrders(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.Pending()))
}

func (h *Handler) IncompleteOrders(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toOrderDTOs(h.Engine.Incomplete()))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if date := q.Get("date"); date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"total": h.Engine.SalesOn(d).String()})
		return
	}
	if customer := q.Get("customer"); customer != "" {
		h.writeJSON(w, http.StatusOK, map[string]string{"total": h.Engine.SalesFor(customer).String()})
		return
	}
	h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date or customer query parameter required"})
}

func (h *Handler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	counts := h.Engine.CountByStatus()
	out := make(map[string]int, len(counts))
	for s, n := range counts {
		out[string(s)] = n
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	h.writeJSON(w, http.StatusOK, toItemDTOs(h.Engine.TopItems(limit)))
}
