package orders

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vydibot/order-engine/catalog"
)

// =============================================================================
// AGGREGATE QUERIES
// =============================================================================

// ByCustomer returns the orders placed by a customer code.
func (e *Engine) ByCustomer(customerCode string) []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter(func(o *Order) bool { return o.CustomerCode == customerCode })
}

// ByStatus returns the orders currently in a status.
func (e *Engine) ByStatus(status Status) []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byStatus(status)
}

func (e *Engine) byStatus(status Status) []*Order {
	return e.filter(func(o *Order) bool { return o.Status == status })
}

// OnDate returns the orders placed on an exact calendar date.
func (e *Engine) OnDate(date time.Time) []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.onDate(date)
}

func (e *Engine) onDate(date time.Time) []*Order {
	d := dateOf(date)
	return e.filter(func(o *Order) bool { return o.PlacedAt.Equal(d) })
}

// Between returns the orders placed within [from, to], inclusive on both
// ends.
func (e *Engine) Between(from, to time.Time) []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo, hi := dateOf(from), dateOf(to)
	return e.filter(func(o *Order) bool {
		return !o.PlacedAt.Before(lo) && !o.PlacedAt.After(hi)
	})
}

// Pending returns the orders still in PENDING.
func (e *Engine) Pending() []*Order {
	return e.ByStatus(StatusPending)
}

// Incomplete returns in-flight orders (PROCESSED, IN_PREPARATION, or
// SHIPPED) with at least one line not fully fulfilled.
func (e *Engine) Incomplete() []*Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.filter(func(o *Order) bool {
		inFlight := o.Status == StatusProcessed ||
			o.Status == StatusInPreparation ||
			o.Status == StatusShipped
		return inFlight && !o.Complete()
	})
}

// SalesOn sums the totals of non-canceled orders placed on a date.
func (e *Engine) SalesOn(date time.Time) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for _, o := range e.onDate(date) {
		if o.Status != StatusCanceled {
			total = total.Add(o.Total)
		}
	}
	return total
}

// SalesFor sums the totals of a customer's non-canceled orders.
func (e *Engine) SalesFor(customerCode string) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for _, o := range e.store.List() {
		if o.CustomerCode == customerCode && o.Status != StatusCanceled {
			total = total.Add(o.Total)
		}
	}
	return total
}

// CountByStatus counts orders grouped by status.
func (e *Engine) CountByStatus() map[Status]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := make(map[Status]int)
	for _, o := range e.store.List() {
		counts[o.Status]++
	}
	return counts
}

// TopItems returns the n most-ordered items by summed ordered quantity
// across all orders regardless of status. Ties keep the grouping's
// stable order. Items no longer in the catalog are skipped.
func (e *Engine) TopItems(n int) []*catalog.Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := make(map[string]int)
	var order []string // first-seen order, keeps ties stable
	for _, o := range e.store.List() {
		for _, l := range o.Lines {
			if _, seen := counts[l.ItemCode]; !seen {
				order = append(order, l.ItemCode)
			}
			counts[l.ItemCode] += l.Ordered
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	var out []*catalog.Item
	for _, code := range order {
		if len(out) == n {
			break
		}
		if it, err := e.catalog.Find(code); err == nil {
			out = append(out, it)
		}
	}
	return out
}

func (e *Engine) filter(keep func(*Order) bool) []*Order {
	var out []*Order
	for _, o := range e.store.List() {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
