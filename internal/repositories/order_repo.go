package repositories

import (
	"kulit/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByStatus(status models.OrderStatus) ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateFulfillment persists status, payment and shipment fields only,
	// and only while the stored status is still from. A stale from fails
	// with ErrInvalidTransition. Items and amounts are never rewritten.
	UpdateFulfillment(order *models.Order, from models.OrderStatus) error
}
