package domain

import "encoding/json"

// EventKind tags an order-change broadcast message.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventUpdated       EventKind = "updated"
	EventStatusChanged EventKind = "status_changed"
	EventDeleted       EventKind = "deleted"
)

// Event is an order-change notification. Immutable once constructed; its
// lifetime is a single broadcast call.
type Event struct {
	Kind    EventKind
	OrderID int64
	Order   *Order // nil for deleted
	Actor   *Actor // nil when the mutation has no authenticated actor
}

// wireEvent is the exact JSON shape existing clients expect.
type wireEvent struct {
	Type     EventKind `json:"type"`
	OrderID  int64     `json:"order_id"`
	UserID   *int64    `json:"user_id"`
	Username *string   `json:"username"`
	Order    *Order    `json:"order,omitempty"`
}

// MarshalWire serializes the event to the subscriber wire format.
// user_id and username are null when no actor is known; order is omitted
// entirely for deletions.
func (e Event) MarshalWire() ([]byte, error) {
	w := wireEvent{
		Type:    e.Kind,
		OrderID: e.OrderID,
		Order:   e.Order,
	}
	if e.Actor != nil {
		w.UserID = &e.Actor.UserID
		w.Username = &e.Actor.Username
	}
	return json.Marshal(w)
}
