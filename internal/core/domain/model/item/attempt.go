package item

import "time"

// EventType tags an attempt record with the transition that produced it.
type EventType string

const (
	EventAbsent     EventType = "absent"
	EventDelivered  EventType = "delivered"
	EventPickedUp   EventType = "picked_up"
	EventHeld       EventType = "held"
	EventReturned   EventType = "returned"
	EventHandedOver EventType = "handed_over"
)

// Attempt is one entry of an item's append-only history.
type Attempt struct {
	At    time.Time
	Event EventType
	Note  string
}

func eventFor(s Status) EventType {
	switch s { //nolint:exhaustive // only transition targets produce events
	case Absent:
		return EventAbsent
	case Delivered:
		return EventDelivered
	case PickedUp:
		return EventPickedUp
	case Held:
		return EventHeld
	case Returned:
		return EventReturned
	case HandedOver:
		return EventHandedOver
	}
	return EventType(s.String())
}
