/*
service.go - Catalog service: CRUD and cross-item stock queries

PURPOSE:
  Mediates all access to the item store. The store is injected, never a
  package-level registry, so callers decide whether items live in memory
  or in SQLite.

ERROR MODEL:
  Structural failures only: ErrNotFound and ErrDuplicateCode. Stock
  adjustments that cannot be applied (reduction below zero, negative set)
  are silently ignored at the Item level rather than surfaced as errors.

SEE ALSO:
  - item.go: Item entity and per-item stock rules
  - store/memory: In-memory Store implementation
  - store/sqlite: Persistent Store implementation
*/
package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when an item code is unknown.
	ErrNotFound = errors.New("item not found")

	// ErrDuplicateCode is returned when adding an item whose code exists.
	ErrDuplicateCode = errors.New("item code already exists")

	// ErrInvalidItem is returned when an item fails validation.
	ErrInvalidItem = errors.New("invalid item")
)

// Store persists items keyed by code. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put stores or replaces an item unconditionally.
	Put(it *Item) error

	// Get returns the item for a code, or false if unknown.
	Get(code string) (*Item, bool)

	// List returns all items. Order is unspecified but stable for a
	// given implementation.
	List() []*Item

	// Delete removes an item, reporting whether it existed.
	Delete(code string) bool

	// Len returns the number of stored items.
	Len() int
}

// Service exposes catalog operations over an injected Store.
type Service struct {
	store Store
}

// NewService creates a catalog service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// =============================================================================
// CRUD
// =============================================================================

// Add stores a new item. Fails with ErrDuplicateCode if the code is taken;
// the catalog is left unchanged in that case.
func (s *Service) Add(it *Item) error {
	if err := Validate(it); err != nil {
		return err
	}
	if _, ok := s.store.Get(it.Code); ok {
		return ErrDuplicateCode
	}
	return s.store.Put(it)
}

// Find returns the item for a code.
func (s *Service) Find(code string) (*Item, error) {
	it, ok := s.store.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	return it, nil
}

// List returns all items.
func (s *Service) List() []*Item {
	return s.store.List()
}

// Update replaces a stored item wholesale. Fails if the code is unknown.
func (s *Service) Update(it *Item) error {
	if err := Validate(it); err != nil {
		return err
	}
	if _, ok := s.store.Get(it.Code); !ok {
		return ErrNotFound
	}
	return s.store.Put(it)
}

// Remove deletes an item by code.
func (s *Service) Remove(code string) error {
	if !s.store.Delete(code) {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of items in the catalog.
func (s *Service) Count() int {
	return s.store.Len()
}

// Validate checks the structural rules for an item: non-blank code and
// name, non-negative price.
func Validate(it *Item) error {
	if it == nil {
		return ErrInvalidItem
	}
	if strings.TrimSpace(it.Code) == "" || strings.TrimSpace(it.Name) == "" {
		return ErrInvalidItem
	}
	if it.Price.IsNegative() {
		return ErrInvalidItem
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// SearchByName returns items whose name contains the given substring,
// case-insensitively.
func (s *Service) SearchByName(name string) []*Item {
	needle := strings.ToLower(name)
	var out []*Item
	for _, it := range s.store.List() {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// NeedingRestock returns items with at least one warehouse strictly below
// its minimum.
func (s *Service) NeedingRestock() []*Item {
	var out []*Item
	for _, it := range s.store.List() {
		for _, w := range it.Warehouses() {
			if it.NeedsRestock(w) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Available returns items whose summed stock across all warehouses is
// greater than zero.
func (s *Service) Available() []*Item {
	var out []*Item
	for _, it := range s.store.List() {
		if it.TotalStock() > 0 {
			out = append(out, it)
		}
	}
	return out
}

// InWarehouse returns items that have an entry for the named warehouse,
// including entries whose quantity is zero.
func (s *Service) InWarehouse(name string) []*Item {
	var out []*Item
	for _, it := range s.store.List() {
		if _, ok := it.StockByWarehouse()[name]; ok {
			out = append(out, it)
		}
	}
	return out
}

// CheckAvailability reports whether the summed stock for a code covers the
// requested quantity. Unknown codes are never available.
func (s *Service) CheckAvailability(code string, requested int) bool {
	it, ok := s.store.Get(code)
	if !ok {
		return false
	}
	return it.HasAvailability(requested)
}

// AdjustStock changes a warehouse's quantity by delta. Positive deltas
// increase stock; negative deltas reduce it by abs(delta), and the
// reduction is silently skipped if it would take stock below zero.
func (s *Service) AdjustStock(code, warehouse string, delta int) error {
	it, ok := s.store.Get(code)
	if !ok {
		return ErrNotFound
	}
	if delta > 0 {
		it.IncreaseStock(warehouse, delta)
	} else {
		it.ReduceStock(warehouse, -delta)
	}
	return s.store.Put(it)
}

// SetStock sets a warehouse's quantity outright. Negative quantities are
// silently ignored.
func (s *Service) SetStock(code, warehouse string, qty int) error {
	it, ok := s.store.Get(code)
	if !ok {
		return ErrNotFound
	}
	it.SetStock(warehouse, qty)
	return s.store.Put(it)
}

// TotalByWarehouse sums stock per warehouse across all items.
func (s *Service) TotalByWarehouse() map[string]int {
	summary := make(map[string]int)
	for _, it := range s.store.List() {
		for w, q := range it.StockByWarehouse() {
			summary[w] += q
		}
	}
	return summary
}
