// Package memory provides in-memory Store implementations for the
// catalog, customer ledger, and order engine. Used by tests and by the
// server when no database path is configured. All stores keep insertion
// order for List and are RWMutex-guarded.
package memory

import (
	"sync"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
)

// =============================================================================
// ITEM STORE
// =============================================================================

type Items struct {
	mu    sync.RWMutex
	items map[string]*catalog.Item
	order []string
}

func NewItems() *Items {
	return &Items{items: make(map[string]*catalog.Item)}
}

func (s *Items) Put(it *catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.Code]; !ok {
		s.order = append(s.order, it.Code)
	}
	s.items[it.Code] = it
	return nil
}

func (s *Items) Get(code string) (*catalog.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[code]
	return it, ok
}

func (s *Items) List() []*catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Item, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.items[code])
	}
	return out
}

func (s *Items) Delete(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[code]; !ok {
		return false
	}
	delete(s.items, code)
	for i, c := range s.order {
		if c == code {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Items) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

type Customers struct {
	mu    sync.RWMutex
	byID  map[string]*customers.Customer
	order []string
}

func NewCustomers() *Customers {
	return &Customers{byID: make(map[string]*customers.Customer)}
}

func (s *Customers) Put(c *customers.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.Code]; !ok {
		s.order = append(s.order, c.Code)
	}
	s.byID[c.Code] = c
	return nil
}

func (s *Customers) Get(code string) (*customers.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[code]
	return c, ok
}

func (s *Customers) List() []*customers.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*customers.Customer, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.byID[code])
	}
	return out
}

func (s *Customers) Delete(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[code]; !ok {
		return false
	}
	delete(s.byID, code)
	for i, c := range s.order {
		if c == code {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Customers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// =============================================================================
// ORDER STORE
// =============================================================================

type Orders struct {
	mu      sync.RWMutex
	byNum   map[string]*orders.Order
	order   []string
	counter int
	events  []orders.Event
}

func NewOrders() *Orders {
	return &Orders{byNum: make(map[string]*orders.Order)}
}

func (s *Orders) Put(o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byNum[o.Number]; !ok {
		s.order = append(s.order, o.Number)
	}
	s.byNum[o.Number] = o
	return nil
}

func (s *Orders) Get(number string) (*orders.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byNum[number]
	return o, ok
}

func (s *Orders) List() []*orders.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*orders.Order, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.byNum[n])
	}
	return out
}

func (s *Orders) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byNum)
}

// NextNumber increments the order counter. Numbers are never reused,
// even when orders are canceled.
func (s *Orders) NextNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

func (s *Orders) AppendEvent(ev orders.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *Orders) EventsFor(number string) []orders.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []orders.Event
	for _, ev := range s.events {
		if ev.OrderNumber == number {
			out = append(out, ev)
		}
	}
	return out
}
