package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vydibot/order-engine/orders"
)

// =============================================================================
// FILTER QUERIES
// =============================================================================

func TestQueries_ByCustomerAndStatus(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)
	e.addCustomer(t, "CLI002", 50000, 0)
	e.addItem(t, "A", 100, "North", 50)

	first := e.newOrder(t, "CLI001")
	second := e.newOrder(t, "CLI002")
	third := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(first, "A", 1))
	require.NoError(t, e.engine.Process(first))

	byCustomer := e.engine.ByCustomer("CLI001")
	require.Len(t, byCustomer, 2)
	assert.Equal(t, first, byCustomer[0].Number)
	assert.Equal(t, third, byCustomer[1].Number)

	pending := e.engine.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, second, pending[0].Number)

	processed := e.engine.ByStatus(orders.StatusProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, first, processed[0].Number)
}

func TestQueries_OnDateAndBetween(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)

	march15 := e.newOrder(t, "CLI001")

	e.clock = time.Date(2024, time.March, 17, 23, 59, 0, 0, time.UTC)
	march17 := e.newOrder(t, "CLI001")

	e.clock = time.Date(2024, time.March, 20, 8, 0, 0, 0, time.UTC)
	march20 := e.newOrder(t, "CLI001")

	// Exact date, ignoring the time of day.
	on := e.engine.OnDate(time.Date(2024, time.March, 17, 3, 0, 0, 0, time.UTC))
	require.Len(t, on, 1)
	assert.Equal(t, march17, on[0].Number)

	assert.Empty(t, e.engine.OnDate(time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)))

	// Inclusive on both ends.
	between := e.engine.Between(
		time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC),
	)
	require.Len(t, between, 2)
	assert.Equal(t, march15, between[0].Number)
	assert.Equal(t, march17, between[1].Number)

	all := e.engine.Between(
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	require.Len(t, all, 3)
	assert.Equal(t, march20, all[2].Number)
}

// =============================================================================
// INCOMPLETE ORDERS
// =============================================================================

func TestQueries_Incomplete(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)
	e.addItem(t, "A", 100, "North", 50)

	// A fully fulfilled processed order is not incomplete.
	full := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(full, "A", 2))
	require.NoError(t, e.engine.Process(full))
	assert.Empty(t, e.engine.Incomplete())

	// A pending order with outstanding units is not in flight yet.
	pending := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(pending, "A", 2))
	assert.Empty(t, e.engine.Incomplete())

	// Mark part of the processed order undelivered again.
	o, err := e.engine.Find(full)
	require.NoError(t, err)
	o.Lines[0].Pending = 1

	got := e.engine.Incomplete()
	require.Len(t, got, 1)
	assert.Equal(t, full, got[0].Number)

	// Still reported while shipping, gone once delivered.
	require.NoError(t, e.engine.ChangeStatus(full, orders.StatusInPreparation))
	require.NoError(t, e.engine.ChangeStatus(full, orders.StatusShipped))
	assert.Len(t, e.engine.Incomplete(), 1)

	require.NoError(t, e.engine.ChangeStatus(full, orders.StatusDelivered))
	assert.Empty(t, e.engine.Incomplete())
}

// =============================================================================
// SALES
// =============================================================================

func TestQueries_SalesExcludeCanceled(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)
	e.addItem(t, "A", 100, "North", 50)

	kept := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(kept, "A", 3)) // 300

	canceled := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(canceled, "A", 10)) // 1000
	require.NoError(t, e.engine.Cancel(canceled))

	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, e.engine.SalesOn(day).Equal(dec(300)))
	assert.True(t, e.engine.SalesFor("CLI001").Equal(dec(300)))
	assert.True(t, e.engine.SalesOn(day.AddDate(0, 0, 1)).IsZero())
	assert.True(t, e.engine.SalesFor("CLI404").IsZero())
}

func TestQueries_CountByStatus(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)
	e.addItem(t, "A", 100, "North", 50)

	e.newOrder(t, "CLI001")
	second := e.newOrder(t, "CLI001")
	third := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(second, "A", 1))
	require.NoError(t, e.engine.Process(second))
	require.NoError(t, e.engine.Cancel(third))

	counts := e.engine.CountByStatus()
	assert.Equal(t, 1, counts[orders.StatusPending])
	assert.Equal(t, 1, counts[orders.StatusProcessed])
	assert.Equal(t, 1, counts[orders.StatusCanceled])
	assert.Equal(t, 0, counts[orders.StatusShipped])
}

// =============================================================================
// TOP ITEMS
// =============================================================================

func TestQueries_TopItems(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 100000, 0)
	e.addItem(t, "A", 100, "North", 50)
	e.addItem(t, "B", 100, "North", 50)
	e.addItem(t, "C", 100, "North", 50)

	first := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(first, "A", 2))
	require.NoError(t, e.engine.AddLine(first, "B", 5))

	// Canceled orders still count toward demand.
	second := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(second, "A", 1))
	require.NoError(t, e.engine.AddLine(second, "C", 3))
	require.NoError(t, e.engine.Cancel(second))

	top := e.engine.TopItems(2)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Code) // 5 units
	assert.Equal(t, "A", top[1].Code) // 3 units, seen before C's 3

	// Ties keep first-seen order: A (3) before C (3).
	all := e.engine.TopItems(10)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{all[0].Code, all[1].Code, all[2].Code})
}

func TestQueries_TopItemsSkipsRemovedItems(t *testing.T) {
	e := newEnv(t)
	e.addCustomer(t, "CLI001", 50000, 0)
	e.addItem(t, "A", 100, "North", 50)
	e.addItem(t, "B", 100, "North", 50)

	number := e.newOrder(t, "CLI001")
	require.NoError(t, e.engine.AddLine(number, "A", 9))
	require.NoError(t, e.engine.AddLine(number, "B", 1))

	require.NoError(t, e.catalog.Remove("A"))

	top := e.engine.TopItems(5)
	require.Len(t, top, 1)
	assert.Equal(t, "B", top[0].Code)
}
