package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
	"github.com/vydibot/order-engine/store/sqlite"
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// ITEM ROUND-TRIP
// =============================================================================

func TestItems_RoundTripPreservesWarehouseOrder(t *testing.T) {
	db := openDB(t)
	s := db.Items()

	it := catalog.NewItem("ART001", "Widget", "industrial widget", decimal.RequireFromString("149.90"))
	it.AddWarehouse("Central", 5, 2)
	it.AddWarehouse("North", 3, 1)
	it.IncreaseStock("Annex", 7) // registered without a minimum
	require.NoError(t, s.Put(it))

	got, ok := s.Get("ART001")
	require.True(t, ok)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "industrial widget", got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("149.90")))

	assert.Equal(t, []string{"Central", "North", "Annex"}, got.Warehouses())
	assert.Equal(t, 5, got.Stock("Central"))
	assert.Equal(t, 7, got.Stock("Annex"))

	min, ok := got.MinStock("North")
	require.True(t, ok)
	assert.Equal(t, 1, min)
	_, ok = got.MinStock("Annex")
	assert.False(t, ok, "a warehouse registered by stock movement has no minimum")
}

func TestItems_PutUpdatesInPlace(t *testing.T) {
	db := openDB(t)
	s := db.Items()

	it := catalog.NewItem("A", "Widget", "", decimal.NewFromInt(10))
	it.AddWarehouse("Central", 5, 2)
	require.NoError(t, s.Put(it))

	it.SetStock("Central", 9)
	it.Price = decimal.NewFromInt(12)
	require.NoError(t, s.Put(it))

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, 9, got.Stock("Central"))
	assert.True(t, got.Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 1, s.Len())
}

func TestItems_DeleteAndList(t *testing.T) {
	db := openDB(t)
	s := db.Items()

	for _, code := range []string{"C", "A", "B"} {
		require.NoError(t, s.Put(catalog.NewItem(code, "Item "+code, "", decimal.NewFromInt(1))))
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Code, "List follows insertion order")

	assert.True(t, s.Delete("A"))
	assert.False(t, s.Delete("A"))
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("A")
	assert.False(t, ok)
}

// =============================================================================
// CUSTOMER ROUND-TRIP
// =============================================================================

func TestCustomers_RoundTrip(t *testing.T) {
	db := openDB(t)
	s := db.Customers()

	c := customers.New("CLI001", "Acme", decimal.RequireFromString("50000"), decimal.RequireFromString("5.5"))
	c.Balance = decimal.RequireFromString("1234.56")
	c.AddShippingAddress("1 Main St")
	c.AddShippingAddress("2 Depot Rd")
	c.RecordOrder("PED-000001")
	require.NoError(t, s.Put(c))

	got, ok := s.Get("CLI001")
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, got.CreditLimit.Equal(decimal.RequireFromString("50000")))
	assert.True(t, got.DiscountPercent.Equal(decimal.RequireFromString("5.5")))
	assert.Equal(t, []string{"1 Main St", "2 Depot Rd"}, got.ShippingAddresses())
	assert.Equal(t, []string{"PED-000001"}, got.Orders())
}

func TestCustomers_DeleteCascadesChildren(t *testing.T) {
	db := openDB(t)
	s := db.Customers()

	c := customers.New("CLI001", "Acme", decimal.NewFromInt(100), decimal.Zero)
	c.AddShippingAddress("1 Main St")
	require.NoError(t, s.Put(c))

	assert.True(t, s.Delete("CLI001"))
	assert.Equal(t, 0, s.Len())

	// Re-creating the code starts with no addresses carried over.
	require.NoError(t, s.Put(customers.New("CLI001", "Acme II", decimal.NewFromInt(100), decimal.Zero)))
	got, ok := s.Get("CLI001")
	require.True(t, ok)
	assert.Empty(t, got.ShippingAddresses())
}

// =============================================================================
// ORDER ROUND-TRIP
// =============================================================================

func TestOrders_RoundTripWithLines(t *testing.T) {
	db := openDB(t)
	s := db.Orders()

	placed := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)
	o := orders.NewOrder("PED-000001", "CLI001", "1 Main St", placed)
	it := catalog.NewItem("ART001", "Widget", "", decimal.RequireFromString("1000"))
	o.AddLine(it, 6)
	o.RecomputeTotal(decimal.NewFromInt(5))
	o.Status = orders.StatusProcessed
	o.Lines[0].Pending = 0
	require.NoError(t, s.Put(o))

	got, ok := s.Get("PED-000001")
	require.True(t, ok)
	assert.Equal(t, "CLI001", got.CustomerCode)
	assert.Equal(t, orders.StatusProcessed, got.Status)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got.PlacedAt)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("5700")))

	require.Len(t, got.Lines, 1)
	l := got.Lines[0]
	assert.Equal(t, "ART001", l.ItemCode)
	assert.Equal(t, 6, l.Ordered)
	assert.Equal(t, 0, l.Pending)
	assert.True(t, l.UnitPrice.Equal(decimal.RequireFromString("1000")))
	assert.True(t, l.Subtotal.Equal(decimal.RequireFromString("6000")))
}

func TestOrders_CounterSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.db")

	db, err := sqlite.Open(path)
	require.NoError(t, err)
	s := db.Orders()
	assert.Equal(t, 1, s.NextNumber())
	assert.Equal(t, 2, s.NextNumber())
	require.NoError(t, db.Close())

	db, err = sqlite.Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 3, db.Orders().NextNumber())
}

func TestOrders_EventsRoundTrip(t *testing.T) {
	db := openDB(t)
	s := db.Orders()

	at := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	ev := orders.Event{
		ID:          uuid.New(),
		OrderNumber: "PED-000001",
		Type:        orders.EventStatusChange,
		FromStatus:  orders.StatusPending,
		ToStatus:    orders.StatusProcessed,
		Note:        "",
		At:          at,
	}
	require.NoError(t, s.AppendEvent(ev))
	require.NoError(t, s.AppendEvent(orders.Event{
		ID:          uuid.New(),
		OrderNumber: "PED-000002",
		Type:        orders.EventCreated,
		ToStatus:    orders.StatusPending,
		At:          at,
	}))

	evs := s.EventsFor("PED-000001")
	require.Len(t, evs, 1)
	assert.Equal(t, ev.ID, evs[0].ID)
	assert.Equal(t, orders.EventStatusChange, evs[0].Type)
	assert.Equal(t, orders.StatusPending, evs[0].FromStatus)
	assert.Equal(t, orders.StatusProcessed, evs[0].ToStatus)
	assert.True(t, evs[0].At.Equal(at))

	assert.Empty(t, s.EventsFor("PED-000099"))
}
