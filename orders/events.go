package orders

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an order event.
type EventType string

const (
	EventCreated      EventType = "order_created"
	EventLineAdded    EventType = "line_added"
	EventStatusChange EventType = "status_change"
)

// Event is an immutable audit record of something that happened to an
// order. Events are append-only; nothing updates or deletes them.
type Event struct {
	ID          uuid.UUID
	OrderNumber string
	Type        EventType
	FromStatus  Status
	ToStatus    Status
	Note        string
	At          time.Time
}

func newEvent(number string, typ EventType, from, to Status, note string, at time.Time) Event {
	return Event{
		ID:          uuid.New(),
		OrderNumber: number,
		Type:        typ,
		FromStatus:  from,
		ToStatus:    to,
		Note:        note,
		At:          at,
	}
}
