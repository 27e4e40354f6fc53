package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vydibot/order-engine/orders"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []orders.Status{
		orders.StatusPending,
		orders.StatusProcessed,
		orders.StatusInPreparation,
		orders.StatusShipped,
		orders.StatusDelivered,
		orders.StatusCanceled,
	} {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}

	assert.False(t, orders.Status("").IsValid())
	assert.False(t, orders.Status("LOST").IsValid())
	assert.False(t, orders.Status("pending").IsValid(), "statuses are case sensitive")
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []orders.Status{
		orders.StatusPending,
		orders.StatusProcessed,
		orders.StatusInPreparation,
		orders.StatusShipped,
		orders.StatusDelivered,
		orders.StatusCanceled,
	}

	// CANCELED admits nothing, itself included.
	for _, target := range all {
		assert.False(t, orders.StatusCanceled.CanTransitionTo(target),
			"CANCELED -> %s", target)
	}

	// DELIVERED only admits DELIVERED.
	for _, target := range all {
		want := target == orders.StatusDelivered
		assert.Equal(t, want, orders.StatusDelivered.CanTransitionTo(target),
			"DELIVERED -> %s", target)
	}

	// Every other source state is structurally open, backward moves
	// included; operation-level rules narrow this further.
	for _, from := range []orders.Status{
		orders.StatusPending,
		orders.StatusProcessed,
		orders.StatusInPreparation,
		orders.StatusShipped,
	} {
		for _, target := range all {
			assert.True(t, from.CanTransitionTo(target), "%s -> %s", from, target)
		}
	}
}
