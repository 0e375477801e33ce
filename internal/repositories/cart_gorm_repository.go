package repositories

import (
	"errors"
	"fmt"

	"kulit/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository stores each cart as one row with its items as JSON.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Get retrieves the user's cart.
func (r *GORMCartRepository) Get(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save upserts the cart row.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	if err := r.db.Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", cart.UserID, err)
	}
	return nil
}

// Checkout removes the cart row as part of placing an order. Of two
// transactions deleting the same row only one sees RowsAffected == 1.
func (r *GORMCartRepository) Checkout(userID string) error {
	res := r.db.Delete(&models.Cart{}, "user_id = ?", userID)
	if res.Error != nil {
		return fmt.Errorf("failed to check out cart for user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: cart for user %s was already checked out", models.ErrEmptyCart, userID)
	}
	return nil
}

// Clear removes the user's cart row.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Delete(&models.Cart{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
