package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusAccepted       OrderStatus = "ACCEPTED"
	OrderStatusRejected       OrderStatus = "REJECTED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
)

type PaymentMethod string

const PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"

// transitions is the full order lifecycle graph. No transition skips a
// stage and none reverses; REJECTED and COMPLETED are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusAccepted, OrderStatusRejected},
	OrderStatusAccepted:       {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {OrderStatusCompleted},
}

// CanTransition reports whether the lifecycle graph permits from -> to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionVerb is the human verb used in "order cannot be <verb>" messages.
func TransitionVerb(to OrderStatus) string {
	switch to {
	case OrderStatusAccepted:
		return "accepted"
	case OrderStatusRejected:
		return "rejected"
	case OrderStatusOutForDelivery:
		return "dispatched"
	case OrderStatusDelivered:
		return "marked delivered"
	case OrderStatusCompleted:
		return "completed"
	default:
		return "updated"
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusAccepted, OrderStatusRejected,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCompleted:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusRejected || s == OrderStatusCompleted
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the immutable checkout snapshot of a cart. Only the status,
// the lifecycle timestamps and the rejection reason ever change after
// creation, and only through guarded transitions.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	VendorID        uuid.UUID       `json:"vendor_id"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
	DeliveryPhone   string          `json:"delivery_phone"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Items           []OrderItem     `json:"items"`

	CreatedAt        time.Time  `json:"created_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	OutForDeliveryAt *time.Time `json:"out_for_delivery_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
}

// TimelineEvent is one entry of the order tracking projection.
type TimelineEvent struct {
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
}

// Timeline synthesizes one event per non-nil lifecycle timestamp, in
// lifecycle field order, with rejection appended only when terminal.
func (o *Order) Timeline() []TimelineEvent {
	events := []TimelineEvent{{
		Status:      OrderStatusPlaced,
		Timestamp:   o.CreatedAt,
		Description: "Order placed",
	}}

	if o.AcceptedAt != nil {
		events = append(events, TimelineEvent{OrderStatusAccepted, *o.AcceptedAt, "Vendor accepted order"})
	}
	if o.OutForDeliveryAt != nil {
		events = append(events, TimelineEvent{OrderStatusOutForDelivery, *o.OutForDeliveryAt, "Out for delivery"})
	}
	if o.DeliveredAt != nil {
		events = append(events, TimelineEvent{OrderStatusDelivered, *o.DeliveredAt, "Order delivered"})
	}
	if o.CompletedAt != nil {
		events = append(events, TimelineEvent{OrderStatusCompleted, *o.CompletedAt, "Order completed"})
	}
	if o.Status == OrderStatusRejected && o.RejectedAt != nil {
		events = append(events, TimelineEvent{OrderStatusRejected, *o.RejectedAt, "Order rejected"})
	}

	return events
}
