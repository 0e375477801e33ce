// Package events defines the order events published after a state change
// commits, and the broker-agnostic Publisher contract.
package events

import (
	"context"
	"encoding/json"
	"time"

	"kulit/internal/models"

	"github.com/shopspring/decimal"
)

const (
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
)

// Publisher delivers an encoded event to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// EventItem is the item summary carried by order events.
type EventItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Email          string          `json:"email"`
	CustomerName   string          `json:"customer_name"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	Total          decimal.Decimal `json:"total"`
	Items          []EventItem     `json:"items"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds the event for order. previous is empty for creation.
func NewOrderEvent(eventType string, order *models.Order, previous models.OrderStatus) OrderEvent {
	items := make([]EventItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = EventItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Email:          order.ShippingAddress.Email,
		CustomerName:   order.ShippingAddress.Name,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		Carrier:        order.Carrier,
		TrackingNumber: order.TrackingNumber,
		Subtotal:       order.Subtotal,
		ShippingFee:    order.ShippingFee,
		Total:          order.Total,
		Items:          items,
		OccurredAt:     time.Now().UTC(),
	}
}

// Encode marshals the event to JSON.
func (e OrderEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an encoded OrderEvent.
func Decode(body []byte) (OrderEvent, error) {
	var e OrderEvent
	err := json.Unmarshal(body, &e)
	return e, err
}
