package catalog

import (
	"fmt"
	"strings"
)

// StockReport renders the per-warehouse stock status for an item:
// each warehouse's quantity, minimum, OK/LOW flag, and units short.
func (it *Item) StockReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== STOCK REPORT: %s - %s ===\n", it.Code, it.Name)

	for _, w := range it.warehouses {
		q := it.stock[w]
		min := it.minStock[w]
		short := it.UnitsShort(w)

		status := "OK"
		if q < min {
			status = "LOW"
		}
		fmt.Fprintf(&b, "%s: stock=%d, minimum=%d [%s]", w, q, min, status)
		if short > 0 {
			fmt.Fprintf(&b, " -> %d units short", short)
		}
		b.WriteString("\n")
	}

	if total := it.TotalUnitsShort(); total > 0 {
		fmt.Fprintf(&b, "\nTOTAL SHORT: %d units to satisfy minimums\n", total)
	} else {
		b.WriteString("\nStock adequate in all warehouses\n")
	}
	return b.String()
}

// MissingUnitsReport renders the stock report for a single item code.
func (s *Service) MissingUnitsReport(code string) string {
	it, ok := s.store.Get(code)
	if !ok {
		return "item not found: " + code
	}
	return it.StockReport()
}

// FullLowStockReport renders the stock reports of every item currently
// flagged as low stock.
func (s *Service) FullLowStockReport() string {
	low := s.NeedingRestock()
	if len(low) == 0 {
		return "All items have adequate stock\n"
	}

	var b strings.Builder
	b.WriteString("LOW STOCK REPORT\n")
	b.WriteString("================\n\n")
	for _, it := range low {
		b.WriteString(it.StockReport())
		b.WriteString("\n")
	}
	return b.String()
}
