package domain

import (
	"context"
	"encoding/json"
	"time"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type OrderStatus string

const (
	StatusPending      OrderStatus = "pending"
	StatusInProduction OrderStatus = "in_production"
	StatusReady        OrderStatus = "ready"
	StatusDelivered    OrderStatus = "delivered"
	StatusCancelled    OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusInProduction, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the full materialized view of one order. Items is an opaque JSON
// document owned by the frontend; the backend stores and relays it untouched.
type Order struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	EntryDate     string          `json:"entry_date"`
	DeliveryDate  string          `json:"delivery_date"`
	Customer      string          `json:"customer"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerCity  string          `json:"customer_city"`
	CustomerState string          `json:"customer_state"`
	Priority      Priority        `json:"priority"`
	Status        OrderStatus     `json:"status"`
	TotalValue    string          `json:"total_value"`
	ItemsValue    string          `json:"items_value"`
	FreightValue  string          `json:"freight_value"`
	PaymentType   string          `json:"payment_type"`
	PaymentNotes  string          `json:"payment_notes"`
	ShippingMethod string         `json:"shipping_method"`
	Notes         string          `json:"notes"`
	Finance       bool            `json:"finance"`
	Review        bool            `json:"review"`
	Printing      bool            `json:"printing"`
	Sewing        bool            `json:"sewing"`
	Shipping      bool            `json:"shipping"`
	Ready         bool            `json:"ready"`
	Items         json.RawMessage `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StatusFields is the subset of order fields whose change constitutes a
// state-machine transition. Comparable, so a before/after diff is plain ==.
type StatusFields struct {
	Status   OrderStatus
	Finance  bool
	Review   bool
	Printing bool
	Sewing   bool
	Shipping bool
	Ready    bool
}

// StatusFields extracts the status-relevant subset of the order.
func (o *Order) StatusFields() StatusFields {
	return StatusFields{
		Status:   o.Status,
		Finance:  o.Finance,
		Review:   o.Review,
		Printing: o.Printing,
		Sewing:   o.Sewing,
		Shipping: o.Shipping,
		Ready:    o.Ready,
	}
}

// OrderCreate carries the fields accepted when creating an order.
// Omitted number and dates are defaulted by the pipeline.
type OrderCreate struct {
	Number         string          `json:"number"`
	EntryDate      string          `json:"entry_date"`
	DeliveryDate   string          `json:"delivery_date"`
	Customer       string          `json:"customer"`
	CustomerPhone  string          `json:"customer_phone"`
	CustomerCity   string          `json:"customer_city"`
	CustomerState  string          `json:"customer_state"`
	Priority       Priority        `json:"priority"`
	Status         OrderStatus     `json:"status"`
	TotalValue     string          `json:"total_value"`
	ItemsValue     string          `json:"items_value"`
	FreightValue   string          `json:"freight_value"`
	PaymentType    string          `json:"payment_type"`
	PaymentNotes   string          `json:"payment_notes"`
	ShippingMethod string          `json:"shipping_method"`
	Notes          string          `json:"notes"`
	Items          json.RawMessage `json:"items"`
}

// OrderUpdate is a partial update; nil fields are left untouched.
type OrderUpdate struct {
	Number         *string          `json:"number"`
	EntryDate      *string          `json:"entry_date"`
	DeliveryDate   *string          `json:"delivery_date"`
	Customer       *string          `json:"customer"`
	CustomerPhone  *string          `json:"customer_phone"`
	CustomerCity   *string          `json:"customer_city"`
	CustomerState  *string          `json:"customer_state"`
	Priority       *Priority        `json:"priority"`
	Status         *OrderStatus     `json:"status"`
	TotalValue     *string          `json:"total_value"`
	ItemsValue     *string          `json:"items_value"`
	FreightValue   *string          `json:"freight_value"`
	PaymentType    *string          `json:"payment_type"`
	PaymentNotes   *string          `json:"payment_notes"`
	ShippingMethod *string          `json:"shipping_method"`
	Notes          *string          `json:"notes"`
	Finance        *bool            `json:"finance"`
	Review         *bool            `json:"review"`
	Printing       *bool            `json:"printing"`
	Sewing         *bool            `json:"sewing"`
	Shipping       *bool            `json:"shipping"`
	Ready          *bool            `json:"ready"`
	Items          *json.RawMessage `json:"items"`
}

// OrderFilter narrows a listing. Zero values mean "no filter".
type OrderFilter struct {
	Status    OrderStatus
	Customer  string // case-insensitive substring match
	DateFrom  string // inclusive, against entry date
	DateTo    string // inclusive
	Skip      int
	Limit     int
}

// Actor identifies who caused a mutation, carried into broadcast events.
type Actor struct {
	UserID   int64
	Username string
}

// OrderRepository is the durable order store. Commit failures are the only
// errors that propagate to the original caller of a mutation.
type OrderRepository interface {
	Create(ctx context.Context, req OrderCreate) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	Update(ctx context.Context, id int64, req OrderUpdate) (*Order, error)
	Delete(ctx context.Context, id int64) error
	LatestID(ctx context.Context) (int64, error)
}

// SnapshotStore holds the single latest materialized view per order id,
// overwritten on every mutation and removed with the order.
type SnapshotStore interface {
	Put(ctx context.Context, id int64, order *Order) error
	GetLatest(ctx context.Context, id int64) (*Order, error)
	Delete(ctx context.Context, id int64) error
}

// Broadcaster fans an event out to the current set of live subscribers.
// Best-effort, at-most-once; never returns an error to the caller.
type Broadcaster interface {
	BroadcastAll(event Event)
}
