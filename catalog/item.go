/*
Package catalog provides the item catalog: products stocked across named
warehouses, each with a per-warehouse minimum threshold.

KEY CONCEPTS:
  - Item: A product with a unit price and per-warehouse stock levels.
  - Warehouse order: Items iterate warehouses in INSERTION ORDER. This is
    a contract, not an accident — the order engine's allocation algorithm
    scans warehouses in this order, so allocation is deterministic.
  - Low stock: A (item, warehouse) pair is low iff stock is STRICTLY below
    the configured minimum. Stock equal to the minimum is not low.

UNITS-SHORT SEMANTICS:
  The shortfall reported for a warehouse is max(0, minimum - stock + 1):
  the number of units needed to get strictly ABOVE the minimum, not to
  reach parity with it. At stock == minimum the shortfall is therefore 1
  even though the pair is not flagged as low stock. Intentional; callers
  rely on the "get above the minimum" reading.

SEE ALSO:
  - service.go: CRUD and cross-item queries over a Store
  - report.go: Human-readable stock reports
*/
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ITEM - Product stocked across warehouses
// =============================================================================

// Item is a catalog product. Stock maps are private so that warehouse
// iteration order stays under the entity's control.
type Item struct {
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal

	warehouses []string       // insertion order, drives all iteration
	stock      map[string]int // warehouse -> quantity, always >= 0
	minStock   map[string]int // warehouse -> minimum threshold
}

// NewItem creates an item with no warehouses.
func NewItem(code, name, description string, price decimal.Decimal) *Item {
	return &Item{
		Code:        code,
		Name:        name,
		Description: description,
		Price:       price,
		stock:       make(map[string]int),
		minStock:    make(map[string]int),
	}
}

// AddWarehouse registers a warehouse with an initial quantity and minimum
// threshold. Re-adding an existing warehouse overwrites its levels without
// changing its position in the iteration order.
func (it *Item) AddWarehouse(name string, initial, minimum int) {
	if _, ok := it.stock[name]; !ok {
		it.warehouses = append(it.warehouses, name)
	}
	it.stock[name] = initial
	it.minStock[name] = minimum
}

// Warehouses returns warehouse names in insertion order.
func (it *Item) Warehouses() []string {
	out := make([]string, len(it.warehouses))
	copy(out, it.warehouses)
	return out
}

// Stock returns the quantity held at a warehouse (0 if unknown).
func (it *Item) Stock(warehouse string) int {
	return it.stock[warehouse]
}

// MinStock returns the minimum threshold for a warehouse and whether one
// is configured.
func (it *Item) MinStock(warehouse string) (int, bool) {
	m, ok := it.minStock[warehouse]
	return m, ok
}

// StockByWarehouse returns a copy of the stock map.
func (it *Item) StockByWarehouse() map[string]int {
	out := make(map[string]int, len(it.stock))
	for w, q := range it.stock {
		out[w] = q
	}
	return out
}

// TotalStock sums stock across all warehouses.
func (it *Item) TotalStock() int {
	total := 0
	for _, q := range it.stock {
		total += q
	}
	return total
}

// HasAvailability reports whether the summed stock across ALL warehouses
// covers the requested quantity. It does NOT check that any single
// warehouse can satisfy the request; the order engine handles splitting.
func (it *Item) HasAvailability(requested int) bool {
	return it.TotalStock() >= requested
}

// NeedsRestock reports whether a warehouse is strictly below its minimum.
// Unknown warehouses (or warehouses without a configured minimum) are
// never low.
func (it *Item) NeedsRestock(warehouse string) bool {
	q, ok := it.stock[warehouse]
	if !ok {
		return false
	}
	min, ok := it.minStock[warehouse]
	if !ok {
		return false
	}
	return q < min
}

// ReduceStock removes qty units from a warehouse. A no-op if the warehouse
// is unknown or holds fewer than qty units; stock never goes negative.
func (it *Item) ReduceStock(warehouse string, qty int) {
	current, ok := it.stock[warehouse]
	if ok && current >= qty {
		it.stock[warehouse] = current - qty
	}
}

// IncreaseStock adds qty units to a warehouse, registering the warehouse
// (with no minimum) if it was unknown.
func (it *Item) IncreaseStock(warehouse string, qty int) {
	if _, ok := it.stock[warehouse]; !ok {
		it.warehouses = append(it.warehouses, warehouse)
	}
	it.stock[warehouse] += qty
}

// SetStock sets a warehouse's quantity. Negative quantities are silently
// ignored; the previous value is kept.
func (it *Item) SetStock(warehouse string, qty int) {
	if qty < 0 {
		return
	}
	if _, ok := it.stock[warehouse]; !ok {
		it.warehouses = append(it.warehouses, warehouse)
	}
	it.stock[warehouse] = qty
}

// UnitsShort returns how many units a warehouse needs to get strictly
// above its minimum: max(0, minimum - stock + 1). Returns 0 when either
// the stock entry or the minimum is missing.
func (it *Item) UnitsShort(warehouse string) int {
	q, ok := it.stock[warehouse]
	if !ok {
		return 0
	}
	min, ok := it.minStock[warehouse]
	if !ok {
		return 0
	}
	if short := min - q + 1; short > 0 {
		return short
	}
	return 0
}

// TotalUnitsShort sums UnitsShort across all warehouses.
func (it *Item) TotalUnitsShort() int {
	total := 0
	for _, w := range it.warehouses {
		total += it.UnitsShort(w)
	}
	return total
}

func (it *Item) String() string {
	return fmt.Sprintf("Item{code=%s, name=%s, price=%s, totalStock=%d}",
		it.Code, it.Name, it.Price.String(), it.TotalStock())
}

// =============================================================================
// SNAPSHOT - Serializable view for stores and DTOs
// =============================================================================

// WarehouseLevel is one warehouse's levels in iteration order.
type WarehouseLevel struct {
	Name     string
	Stock    int
	MinStock int
	HasMin   bool
}

// ItemState is a flat snapshot of an Item, used by persistent stores and
// the API layer. Warehouses preserve iteration order.
type ItemState struct {
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal
	Warehouses  []WarehouseLevel
}

// Snapshot captures the item's current state.
func (it *Item) Snapshot() ItemState {
	st := ItemState{
		Code:        it.Code,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
	}
	for _, w := range it.warehouses {
		min, hasMin := it.minStock[w]
		st.Warehouses = append(st.Warehouses, WarehouseLevel{
			Name:     w,
			Stock:    it.stock[w],
			MinStock: min,
			HasMin:   hasMin,
		})
	}
	return st
}

// Restore rebuilds an Item from a snapshot, preserving warehouse order.
func Restore(st ItemState) *Item {
	it := NewItem(st.Code, st.Name, st.Description, st.Price)
	for _, w := range st.Warehouses {
		it.warehouses = append(it.warehouses, w.Name)
		it.stock[w.Name] = w.Stock
		if w.HasMin {
			it.minStock[w.Name] = w.MinStock
		}
	}
	return it
}
