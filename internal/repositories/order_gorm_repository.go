package repositories

import (
	"errors"
	"fmt"

	"kulit/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByStatus retrieves orders in the given status, newest first.
func (r *GORMOrderRepository) GetByStatus(status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("status = ?", status).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders with status %s: %w", status, err)
	}
	return orders, nil
}

// GetByUserID retrieves a user's orders, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateFulfillment writes the mutable fields of an order with
// "WHERE id = ? AND status = from", so two transitions racing from the same
// status cannot both commit.
func (r *GORMOrderRepository) UpdateFulfillment(order *models.Order, from models.OrderStatus) error {
	res := r.db.Model(&models.Order{ID: order.ID}).
		Where("status = ?", from).
		Select("status", "payment_status", "payment_paid_at", "carrier", "tracking_number",
			"cancel_reason", "shipped_at", "delivered_at", "cancelled_at", "updated_at").
		Updates(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		current, err := r.GetByID(order.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s is %s, not %s", models.ErrInvalidTransition, order.ID, current.Status, from)
	}
	return nil
}
