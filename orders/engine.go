/*
engine.go - The order engine

PURPOSE:
  Creates orders, attaches line items, and runs the processing algorithm:
  credit-limit gating plus two-phase greedy stock allocation across each
  item's warehouses. Composes the catalog and customer services; entities
  are referenced by code and resolved through the services on each access.

PROCESSING ALGORITHM (per line):
  Phase 1: scan warehouses in insertion order; if any single warehouse
           holds the full remaining quantity, drain it from that one
           warehouse and stop.
  Phase 2: otherwise scan again in the same order, taking
           min(warehouseStock, remaining) from each warehouse with stock
           until the remainder reaches zero or warehouses run out.
  The line's pending quantity becomes whatever remains (normally zero,
  since the processability pre-check requires total stock to cover the
  line).

CANCELLATION:
  Canceling a PROCESSED order returns each line's fulfilled units to the
  FIRST warehouse in the item's iteration order, not necessarily the
  warehouses actually debited when phase 2 split the allocation. Known
  simplification carried over from the product behavior; the total stock
  count is restored exactly even though its distribution may differ.

CONCURRENCY:
  One mutex serializes every engine operation. Processing touches the
  customer balance, several item stock maps, and the order itself;
  partial application must never be observable.
*/
package orders

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
)

var (
	// ErrNotFound is returned when an order number is unknown.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidQuantity is returned for non-positive line quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidState is returned when the order is not in the state the
	// operation requires (e.g. adding lines to a non-pending order).
	ErrInvalidState = errors.New("order not in required state")

	// ErrInvalidTransition is returned for structurally forbidden status
	// transitions (out of CANCELED, or backwards from DELIVERED).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotProcessable is the sentinel wrapped by NotProcessableError.
	ErrNotProcessable = errors.New("order not processable")
)

// NotProcessableError reports why an order failed the processability
// check. Reason holds the first failing check: credit before stock, and
// within stock, the first insufficient line in line order.
type NotProcessableError struct {
	OrderNumber string
	Reason      string
}

func (e *NotProcessableError) Error() string {
	return fmt.Sprintf("order %s not processable: %s", e.OrderNumber, e.Reason)
}

func (e *NotProcessableError) Unwrap() error { return ErrNotProcessable }

// IsBusinessRule reports whether an error is a business-rule failure
// (credit or stock) rather than a structural one. Business-rule failures
// have no partial effects and may succeed later without input changes.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrNotProcessable)
}

// IsNotFound reports whether an error is a not-found failure from any of
// the three aggregates.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, customers.ErrNotFound)
}

// Store persists orders and their event log. NextNumber must never hand
// out the same number twice, even across canceled orders.
type Store interface {
	Put(o *Order) error
	Get(number string) (*Order, bool)
	List() []*Order
	Len() int

	// NextNumber returns the next value of the monotonically increasing
	// order counter, starting at 1.
	NextNumber() int

	// AppendEvent records an order event. Append-only.
	AppendEvent(ev Event) error

	// EventsFor returns the events for an order, oldest first.
	EventsFor(number string) []Event
}

// Engine composes the catalog and customer ledger into the order
// lifecycle. All operations are serialized by a single mutex.
type Engine struct {
	mu        sync.Mutex
	store     Store
	catalog   *catalog.Service
	customers *customers.Service
	log       *zap.Logger
	now       func() time.Time
}

// NewEngine creates an order engine. A nil logger is replaced by a nop.
func NewEngine(store Store, cat *catalog.Service, cust *customers.Service, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:     store,
		catalog:   cat,
		customers: cust,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the engine's time source. Test hook.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Create opens a pending order for a customer and shipping address and
// returns its number. The address is taken as given; it is not required
// to be one of the customer's saved addresses.
func (e *Engine) Create(customerCode, shippingAddress string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cust, err := e.customers.Find(customerCode)
	if err != nil {
		return "", err
	}

	number := fmt.Sprintf("PED-%06d", e.store.NextNumber())
	o := NewOrder(number, customerCode, shippingAddress, e.now())
	if err := e.store.Put(o); err != nil {
		return "", err
	}

	cust.RecordOrder(number)
	if err := e.customers.Update(cust); err != nil {
		return "", err
	}

	e.appendEvent(newEvent(number, EventCreated, "", StatusPending, "", e.now()))
	e.log.Info("order created",
		zap.String("order", number),
		zap.String("customer", customerCode))
	return number, nil
}

// AddLine appends a line item to a pending order, snapshotting the item's
// current price, and recomputes the order total with the customer's
// current discount rate.
func (e *Engine) AddLine(number, itemCode string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return ErrNotFound
	}
	it, err := e.catalog.Find(itemCode)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if o.Status != StatusPending {
		return ErrInvalidState
	}
	cust, err := e.customers.Find(o.CustomerCode)
	if err != nil {
		return err
	}

	o.AddLine(it, quantity)
	o.RecomputeTotal(cust.DiscountPercent)
	if err := e.store.Put(o); err != nil {
		return err
	}

	e.appendEvent(newEvent(number, EventLineAdded, o.Status, o.Status,
		fmt.Sprintf("%s x%d", itemCode, quantity), e.now()))
	return nil
}

// Find returns an order by number.
func (e *Engine) Find(number string) (*Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns all orders.
func (e *Engine) List() []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

// Count returns the number of orders ever created (canceled included).
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

// Events returns the event log for an order, oldest first.
func (e *Engine) Events(number string) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.Get(number); !ok {
		return nil, ErrNotFound
	}
	return e.store.EventsFor(number), nil
}

// =============================================================================
// PROCESSABILITY
// =============================================================================

// CanBeProcessed runs the processability pre-check: the customer's credit
// must cover the current total, and every line's item must have total
// stock (summed across warehouses) covering its ordered quantity. The
// check reserves nothing.
func (e *Engine) CanBeProcessed(number string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return false, ErrNotFound
	}
	return e.processable(o), nil
}

// ReasonNotProcessable re-runs the processability checks and returns the
// first failing reason: credit before stock, and within stock, the first
// insufficient line in line order. Returns an all-clear message when the
// order is processable.
func (e *Engine) ReasonNotProcessable(number string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return "", ErrNotFound
	}
	return e.reason(o), nil
}

func (e *Engine) processable(o *Order) bool {
	cust, err := e.customers.Find(o.CustomerCode)
	if err != nil || !cust.CanPlaceOrder(o.Total) {
		return false
	}
	for _, l := range o.Lines {
		it, err := e.catalog.Find(l.ItemCode)
		if err != nil || !it.HasAvailability(l.Ordered) {
			return false
		}
	}
	return true
}

func (e *Engine) reason(o *Order) string {
	cust, err := e.customers.Find(o.CustomerCode)
	if err != nil {
		return fmt.Sprintf("customer %s no longer exists", o.CustomerCode)
	}
	if !cust.CanPlaceOrder(o.Total) {
		return fmt.Sprintf("customer over credit limit: balance %s, limit %s, order total %s",
			cust.Balance.StringFixed(2), cust.CreditLimit.StringFixed(2), o.Total.StringFixed(2))
	}
	for _, l := range o.Lines {
		it, err := e.catalog.Find(l.ItemCode)
		if err != nil {
			return fmt.Sprintf("insufficient stock for %s: requested %d, available 0",
				l.ItemCode, l.Ordered)
		}
		if !it.HasAvailability(l.Ordered) {
			return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
				it.Name, l.Ordered, it.TotalStock())
		}
	}
	return "order can be processed"
}

// =============================================================================
// PROCESS / CANCEL / CHANGE STATUS
// =============================================================================

// Process moves a pending order to PROCESSED: bills the customer's
// balance by the order total and allocates stock for every line. Fails
// with no side effects when the order is not pending or not processable.
func (e *Engine) Process(number string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return ErrNotFound
	}
	if o.Status != StatusPending {
		return ErrInvalidState
	}
	return e.process(o)
}

// process assumes the engine lock is held and the order is pending.
func (e *Engine) process(o *Order) error {
	if !e.processable(o) {
		return &NotProcessableError{OrderNumber: o.Number, Reason: e.reason(o)}
	}

	cust, err := e.customers.Find(o.CustomerCode)
	if err != nil {
		return err
	}

	o.Status = StatusProcessed
	cust.Balance = cust.Balance.Add(o.Total)
	if err := e.customers.Update(cust); err != nil {
		return err
	}

	for _, l := range o.Lines {
		it, err := e.catalog.Find(l.ItemCode)
		if err != nil {
			continue // processable() vouched for every line
		}
		l.Pending = allocate(it, l.Ordered)
		if err := e.catalog.Update(it); err != nil {
			return err
		}
	}

	if err := e.store.Put(o); err != nil {
		return err
	}
	e.appendEvent(newEvent(o.Number, EventStatusChange, StatusPending, StatusProcessed, "", e.now()))
	e.log.Info("order processed",
		zap.String("order", o.Number),
		zap.String("customer", o.CustomerCode),
		zap.String("total", o.Total.String()))
	return nil
}

// allocate runs the two-phase greedy allocation for one line against an
// item's warehouses, mutating the item's stock. Returns the unfulfilled
// remainder.
func allocate(it *catalog.Item, required int) int {
	remaining := required

	// Phase 1: a single warehouse that covers the whole quantity.
	for _, w := range it.Warehouses() {
		if it.Stock(w) >= remaining {
			it.ReduceStock(w, remaining)
			remaining = 0
			break
		}
	}

	// Phase 2: split across warehouses in the same order.
	if remaining > 0 {
		for _, w := range it.Warehouses() {
			if remaining == 0 {
				break
			}
			if s := it.Stock(w); s > 0 {
				take := s
				if remaining < take {
					take = remaining
				}
				it.ReduceStock(w, take)
				remaining -= take
			}
		}
	}
	return remaining
}

// Cancel cancels a PENDING or PROCESSED order. For a processed order the
// credit impact is reversed and each line's fulfilled units are returned
// to the first warehouse in its item's iteration order before the status
// flips; a pending order just changes status.
func (e *Engine) Cancel(number string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return ErrNotFound
	}
	return e.cancel(o)
}

// cancel assumes the engine lock is held.
func (e *Engine) cancel(o *Order) error {
	if o.Status != StatusPending && o.Status != StatusProcessed {
		return ErrInvalidState
	}

	from := o.Status
	if o.Status == StatusProcessed {
		if err := e.restoreStock(o); err != nil {
			return err
		}
		cust, err := e.customers.Find(o.CustomerCode)
		if err == nil {
			cust.Balance = cust.Balance.Sub(o.Total)
			if err := e.customers.Update(cust); err != nil {
				return err
			}
		}
	}

	o.Status = StatusCanceled
	if err := e.store.Put(o); err != nil {
		return err
	}
	e.appendEvent(newEvent(o.Number, EventStatusChange, from, StatusCanceled, "", e.now()))
	e.log.Info("order canceled",
		zap.String("order", o.Number),
		zap.String("from", string(from)))
	return nil
}

// restoreStock returns fulfilled units to each line's item and resets the
// pending quantities to the full ordered amount.
func (e *Engine) restoreStock(o *Order) error {
	for _, l := range o.Lines {
		delivered := l.Delivered()
		if delivered <= 0 {
			continue
		}
		it, err := e.catalog.Find(l.ItemCode)
		if err == nil {
			if ws := it.Warehouses(); len(ws) > 0 {
				it.IncreaseStock(ws[0], delivered)
				if err := e.catalog.Update(it); err != nil {
					return err
				}
			}
		}
		l.Pending = l.Ordered
	}
	return nil
}

// ChangeStatus is the general transition entry point. It validates the
// transition structurally, then routes: PROCESSED targets from PENDING go
// through the processing operation, CANCELED targets go through the
// cancellation operation, and everything else is a bare status write.
func (e *Engine) ChangeStatus(number string, target Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(number)
	if !ok {
		return ErrNotFound
	}
	if !target.IsValid() || !o.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	switch target {
	case StatusProcessed:
		if o.Status == StatusPending {
			return e.process(o)
		}
	case StatusCanceled:
		return e.cancel(o)
	}

	from := o.Status
	o.Status = target
	if err := e.store.Put(o); err != nil {
		return err
	}
	e.appendEvent(newEvent(o.Number, EventStatusChange, from, target, "", e.now()))
	return nil
}

// Validate checks structural rules for an order record: non-blank number,
// customer code, and shipping address.
func Validate(o *Order) error {
	if o == nil || o.Number == "" || o.CustomerCode == "" || o.ShippingAddress == "" {
		return errors.New("invalid order")
	}
	return nil
}

func (e *Engine) appendEvent(ev Event) {
	if err := e.store.AppendEvent(ev); err != nil {
		e.log.Warn("failed to append order event",
			zap.String("order", ev.OrderNumber),
			zap.Error(err))
	}
}
