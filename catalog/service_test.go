package catalog_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/store/memory"
)

func newService() *catalog.Service {
	return catalog.NewService(memory.NewItems())
}

// =============================================================================
// CRUD
// =============================================================================

func TestService_Add_DuplicateCodeFails(t *testing.T) {
	svc := newService()
	require.NoError(t, svc.Add(newItem("ART001")))

	// WHEN: adding a second item with the same code
	dup := catalog.NewItem("ART001", "Other", "", price(1))
	err := svc.Add(dup)

	// THEN: the add fails and the catalog keeps the original
	require.ErrorIs(t, err, catalog.ErrDuplicateCode)
	stored, findErr := svc.Find("ART001")
	require.NoError(t, findErr)
	assert.Equal(t, "Item ART001", stored.Name)
	assert.Equal(t, 1, svc.Count())
}

func TestService_Update_ReplacesWholesale(t *testing.T) {
	svc := newService()
	require.NoError(t, svc.Add(newItem("ART001")))

	replacement := catalog.NewItem("ART001", "Renamed", "new description", price(250))
	require.NoError(t, svc.Update(replacement))

	stored, err := svc.Find("ART001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.True(t, stored.Price.Equal(price(250)))
}

func TestService_Update_UnknownCodeFails(t *testing.T) {
	svc := newService()
	err := svc.Update(newItem("ART404"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_Remove(t *testing.T) {
	svc := newService()
	require.NoError(t, svc.Add(newItem("ART001")))

	require.NoError(t, svc.Remove("ART001"))
	assert.ErrorIs(t, svc.Remove("ART001"), catalog.ErrNotFound)
	assert.Equal(t, 0, svc.Count())
}

func TestService_Add_RejectsInvalidItems(t *testing.T) {
	svc := newService()

	assert.ErrorIs(t, svc.Add(catalog.NewItem("", "name", "", price(1))), catalog.ErrInvalidItem)
	assert.ErrorIs(t, svc.Add(catalog.NewItem("X", "  ", "", price(1))), catalog.ErrInvalidItem)
	assert.ErrorIs(t, svc.Add(catalog.NewItem("X", "name", "", price(-1))), catalog.ErrInvalidItem)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestService_NeedingRestock_AnyLowWarehouseQualifies(t *testing.T) {
	svc := newService()

	low := newItem("LOW")
	low.AddWarehouse("North", 10, 2)
	low.AddWarehouse("South", 1, 2) // below minimum
	require.NoError(t, svc.Add(low))

	ok := newItem("OK")
	ok.AddWarehouse("North", 2, 2) // at minimum: not low
	require.NoError(t, svc.Add(ok))

	items := svc.NeedingRestock()
	require.Len(t, items, 1)
	assert.Equal(t, "LOW", items[0].Code)
}

func TestService_Available_PositiveTotalStockOnly(t *testing.T) {
	svc := newService()

	empty := newItem("EMPTY")
	empty.AddWarehouse("North", 0, 0)
	require.NoError(t, svc.Add(empty))

	stocked := newItem("STOCKED")
	stocked.AddWarehouse("North", 1, 0)
	require.NoError(t, svc.Add(stocked))

	items := svc.Available()
	require.Len(t, items, 1)
	assert.Equal(t, "STOCKED", items[0].Code)
}

func TestService_InWarehouse_IncludesZeroQuantityEntries(t *testing.T) {
	svc := newService()

	it := newItem("ART001")
	it.AddWarehouse("North", 0, 0)
	require.NoError(t, svc.Add(it))

	other := newItem("ART002")
	other.AddWarehouse("South", 5, 0)
	require.NoError(t, svc.Add(other))

	items := svc.InWarehouse("North")
	require.Len(t, items, 1)
	assert.Equal(t, "ART001", items[0].Code)
}

func TestService_CheckAvailability_UnknownCodeIsFalse(t *testing.T) {
	svc := newService()
	assert.False(t, svc.CheckAvailability("ART404", 1))

	it := newItem("ART001")
	it.AddWarehouse("North", 5, 0)
	it.AddWarehouse("South", 3, 0)
	require.NoError(t, svc.Add(it))

	assert.True(t, svc.CheckAvailability("ART001", 8))
	assert.False(t, svc.CheckAvailability("ART001", 9))
}

func TestService_AdjustStock_NegativeDeltaSilentWhenInsufficient(t *testing.T) {
	svc := newService()
	it := newItem("ART001")
	it.AddWarehouse("North", 3, 0)
	require.NoError(t, svc.Add(it))

	// Positive delta increases.
	require.NoError(t, svc.AdjustStock("ART001", "North", 2))
	stored, _ := svc.Find("ART001")
	assert.Equal(t, 5, stored.Stock("North"))

	// Negative delta reduces by abs(delta).
	require.NoError(t, svc.AdjustStock("ART001", "North", -4))
	stored, _ = svc.Find("ART001")
	assert.Equal(t, 1, stored.Stock("North"))

	// Reduction past zero is silently skipped, not an error.
	require.NoError(t, svc.AdjustStock("ART001", "North", -2))
	stored, _ = svc.Find("ART001")
	assert.Equal(t, 1, stored.Stock("North"))

	assert.ErrorIs(t, svc.AdjustStock("ART404", "North", 1), catalog.ErrNotFound)
}

func TestService_SetStock_RoundTripNegativeNoOp(t *testing.T) {
	svc := newService()
	it := newItem("ART001")
	it.AddWarehouse("North", 5, 0)
	require.NoError(t, svc.Add(it))

	before, _ := svc.Find("ART001")
	stockBefore := before.Stock("North")

	require.NoError(t, svc.SetStock("ART001", "North", -10))

	after, _ := svc.Find("ART001")
	assert.Equal(t, stockBefore, after.Stock("North"))
}

func TestService_TotalByWarehouse(t *testing.T) {
	svc := newService()

	a := newItem("A")
	a.AddWarehouse("North", 5, 0)
	a.AddWarehouse("South", 2, 0)
	require.NoError(t, svc.Add(a))

	b := newItem("B")
	b.AddWarehouse("North", 3, 0)
	require.NoError(t, svc.Add(b))

	totals := svc.TotalByWarehouse()
	assert.Equal(t, map[string]int{"North": 8, "South": 2}, totals)
}

func TestService_SearchByName_CaseInsensitive(t *testing.T) {
	svc := newService()
	require.NoError(t, svc.Add(catalog.NewItem("A", "Steel Bolt", "", price(1))))
	require.NoError(t, svc.Add(catalog.NewItem("B", "Copper Wire", "", price(1))))

	found := svc.SearchByName("steel")
	require.Len(t, found, 1)
	assert.Equal(t, "A", found[0].Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestService_MissingUnitsReport_ShowsShortfall(t *testing.T) {
	svc := newService()
	it := catalog.NewItem("ART001", "Widget", "", price(10))
	it.AddWarehouse("North", 2, 5)
	require.NoError(t, svc.Add(it))

	report := svc.MissingUnitsReport("ART001")

	assert.Contains(t, report, "ART001")
	assert.Contains(t, report, "4 units short") // 5 - 2 + 1
	assert.Contains(t, report, "LOW")

	assert.Contains(t, svc.MissingUnitsReport("NOPE"), "item not found")
}

func TestService_FullLowStockReport(t *testing.T) {
	svc := newService()

	ok := newItem("OK")
	ok.AddWarehouse("North", 10, 2)
	require.NoError(t, svc.Add(ok))

	assert.True(t, strings.Contains(svc.FullLowStockReport(), "adequate"))

	low := catalog.NewItem("LOW1", "Gadget", "", decimal.NewFromInt(3))
	low.AddWarehouse("South", 0, 3)
	require.NoError(t, svc.Add(low))

	report := svc.FullLowStockReport()
	assert.Contains(t, report, "LOW1")
	assert.NotContains(t, report, "=== STOCK REPORT: OK")
}
