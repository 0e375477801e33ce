package repositories

import (
	"fmt"
	"sort"
	"time"

	"kulit/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	memoryView
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

// GetByStatus returns orders in the given status.
func (r *MockOrderRepository) GetByStatus(status models.OrderStatus) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.Status == status }), nil
}

// GetByUserID returns a user's orders.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *MockOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	defer r.lock()()

	orderList := make([]models.Order, 0)
	for _, order := range r.store.orders {
		if keep(order) {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	defer r.lock()()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w", id, models.ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	defer r.lock()()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()
	stored := *order
	stored.Items = append([]models.OrderItem{}, order.Items...)
	r.store.orders[order.ID] = stored
	return nil
}

// UpdateFulfillment copies the mutable fields onto the stored order.
func (r *MockOrderRepository) UpdateFulfillment(order *models.Order, from models.OrderStatus) error {
	defer r.lock()()

	stored, ok := r.store.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s %w for status update", order.ID, models.ErrNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("%w: order %s is %s, not %s", models.ErrInvalidTransition, order.ID, stored.Status, from)
	}
	stored.Status = order.Status
	stored.PaymentDetails = order.PaymentDetails
	stored.Carrier = order.Carrier
	stored.TrackingNumber = order.TrackingNumber
	stored.CancelReason = order.CancelReason
	stored.ShippedAt = order.ShippedAt
	stored.DeliveredAt = order.DeliveredAt
	stored.CancelledAt = order.CancelledAt
	stored.UpdatedAt = time.Now()
	r.store.orders[order.ID] = stored
	return nil
}
