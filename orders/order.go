package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vydibot/order-engine/catalog"
)

// =============================================================================
// LINE - One (item, quantity) pairing within an order
// =============================================================================

// Line tracks ordered versus pending (unfulfilled) quantity for one item.
// The unit price is snapshotted from the item at line creation; later
// catalog price changes do not touch existing lines unless the item is
// explicitly reset via SetItem.
type Line struct {
	ItemCode  string
	Ordered   int
	Pending   int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewLine creates a line with the full quantity pending and the price
// snapshotted from the item.
func NewLine(it *catalog.Item, ordered int) *Line {
	l := &Line{
		ItemCode:  it.Code,
		Ordered:   ordered,
		Pending:   ordered,
		UnitPrice: it.Price,
	}
	l.recompute()
	return l
}

func (l *Line) recompute() {
	l.Subtotal = decimal.NewFromInt(int64(l.Ordered)).Mul(l.UnitPrice)
}

// SetItem resets the line to another item, re-snapshotting the price and
// recomputing the subtotal.
func (l *Line) SetItem(it *catalog.Item) {
	l.ItemCode = it.Code
	l.UnitPrice = it.Price
	l.recompute()
}

// SetOrderedQuantity replaces the ordered quantity and recomputes the
// subtotal. Pending is left alone.
func (l *Line) SetOrderedQuantity(qty int) {
	l.Ordered = qty
	l.recompute()
}

// SetUnitPrice replaces the unit price and recomputes the subtotal.
func (l *Line) SetUnitPrice(price decimal.Decimal) {
	l.UnitPrice = price
	l.recompute()
}

// Fulfill records delivered units against the pending quantity. Ignored
// when delivered exceeds what is pending.
func (l *Line) Fulfill(delivered int) {
	if delivered <= l.Pending {
		l.Pending -= delivered
	}
}

// Delivered returns the units already fulfilled.
func (l *Line) Delivered() int {
	return l.Ordered - l.Pending
}

// Complete reports whether nothing remains pending.
func (l *Line) Complete() bool {
	return l.Pending == 0
}

// CompletionPercent returns the fulfilled fraction as a percentage.
func (l *Line) CompletionPercent() float64 {
	if l.Ordered == 0 {
		return 0
	}
	return float64(l.Delivered()) / float64(l.Ordered) * 100
}

// =============================================================================
// ORDER - A customer's request for items to one address
// =============================================================================

// Order references its customer by code; the engine resolves the live
// customer through the ledger on each access, so there is no stale
// cached entity to reason about.
type Order struct {
	Number          string
	CustomerCode    string
	ShippingAddress string
	PlacedAt        time.Time // calendar date, UTC midnight
	Lines           []*Line
	Status          Status
	Total           decimal.Decimal
}

// NewOrder creates a pending, empty order.
func NewOrder(number, customerCode, shippingAddress string, placedAt time.Time) *Order {
	return &Order{
		Number:          number,
		CustomerCode:    customerCode,
		ShippingAddress: shippingAddress,
		PlacedAt:        dateOf(placedAt),
		Status:          StatusPending,
		Total:           decimal.Zero,
	}
}

// AddLine appends a line for the item. The caller recomputes the total
// afterwards; the discount rate needs the live customer.
func (o *Order) AddLine(it *catalog.Item, ordered int) {
	o.Lines = append(o.Lines, NewLine(it, ordered))
}

// RecomputeTotal sets the total to the sum of line subtotals minus the
// customer discount at the given rate. The rate is read from the customer
// at call time, not frozen at order creation.
func (o *Order) RecomputeTotal(discountPercent decimal.Decimal) {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Subtotal)
	}
	discount := sum.Mul(discountPercent).Div(decimal.NewFromInt(100))
	o.Total = sum.Sub(discount)
}

// Complete reports whether every line is fully fulfilled.
func (o *Order) Complete() bool {
	for _, l := range o.Lines {
		if !l.Complete() {
			return false
		}
	}
	return true
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{number=%s, customer=%s, date=%s, status=%s, total=%s}",
		o.Number, o.CustomerCode, o.PlacedAt.Format("2006-01-02"), o.Status, o.Total.String())
}

// dateOf truncates a time to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
