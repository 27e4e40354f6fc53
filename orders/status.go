/*
Package orders provides the order engine: order creation, line items,
the processing algorithm (credit gating plus multi-warehouse stock
allocation), the status lifecycle, and aggregate reporting.

LIFECYCLE:
  PENDING -> PROCESSED -> IN_PREPARATION -> SHIPPED -> DELIVERED
  CANCELED is reachable from PENDING or PROCESSED only.
  CANCELED is fully terminal. DELIVERED admits no transition except to
  DELIVERED itself.

PROCESSING:
  Processing an order is atomic with respect to the engine: it moves the
  status to PROCESSED, bills the customer's balance, and allocates stock
  per line with a two-phase greedy scan over the item's warehouses in
  insertion order. See engine.go.
*/
package orders

// Status is an order's lifecycle state.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusProcessed     Status = "PROCESSED"
	StatusInPreparation Status = "IN_PREPARATION"
	StatusShipped       Status = "SHIPPED"
	StatusDelivered     Status = "DELIVERED"
	StatusCanceled      Status = "CANCELED"
)

// IsValid reports whether the status is one of the known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusInPreparation,
		StatusShipped, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition is structurally allowed:
// nothing leaves CANCELED, and DELIVERED only admits DELIVERED. Every
// other pair is allowed here; PROCESSED and CANCELED targets carry
// additional business rules enforced by the engine.
func (s Status) CanTransitionTo(target Status) bool {
	if s == StatusCanceled {
		return false
	}
	if s == StatusDelivered && target != StatusDelivered {
		return false
	}
	return true
}
