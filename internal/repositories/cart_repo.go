package repositories

import "kulit/internal/models"

// CartRepository defines the interface for cart data access.
// There is at most one cart per user.
type CartRepository interface {
	// Get returns the user's cart, or an empty cart if none was saved yet.
	Get(userID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	Clear(userID string) error
	// Checkout deletes the user's cart row and fails with ErrEmptyCart when
	// there is no non-empty cart left to delete.
	Checkout(userID string) error
}
