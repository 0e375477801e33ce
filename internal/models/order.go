package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the allowed next states for each state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseOrderStatus converts s into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidTransition, s)
	}
	return status, nil
}

// CanTransitionTo reports whether the status may move to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// ParsePaymentMethod converts s into a supported PaymentMethod. An empty
// value defaults to cash on delivery.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case "", PaymentCashOnDelivery:
		return PaymentCashOnDelivery, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
}

// PaymentStatus tracks collection of the order amount.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

// PaymentDetails is the mutable payment part of an order.
type PaymentDetails struct {
	Status PaymentStatus `json:"status" gorm:"type:varchar(16)"`
	PaidAt *time.Time    `json:"paid_at,omitempty"`
}

// OrderItem is a line snapshotted at checkout. It never changes afterwards.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // unit price at checkout
}

// Subtotal is price × quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index"`
	Items           []OrderItem     `json:"items" gorm:"serializer:json"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(16)"`
	PaymentDetails  PaymentDetails  `json:"payment_details" gorm:"embedded;embeddedPrefix:payment_"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	ShippingFee     decimal.Decimal `json:"shipping_fee" gorm:"type:decimal(12,2)"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);index"`
	Carrier         string          `json:"carrier"`
	TrackingNumber  string          `json:"tracking_number"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemsSubtotal recomputes Σ price × quantity over the snapshotted items.
func (o *Order) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// ShipmentInfo is attached to an order when it moves to shipped.
type ShipmentInfo struct {
	Carrier        string `json:"carrier" validate:"max=100"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
}
