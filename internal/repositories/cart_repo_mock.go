package repositories

import (
	"fmt"
	"time"

	"kulit/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	memoryView
}

// Get returns a copy of the user's cart.
func (r *MockCartRepository) Get(userID string) (*models.Cart, error) {
	defer r.lock()()

	cart, ok := r.store.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	cart.Items = append([]models.CartItem{}, cart.Items...)
	return &cart, nil
}

// Save stores a copy of the cart.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	defer r.lock()()

	stored := *cart
	stored.Items = append([]models.CartItem{}, cart.Items...)
	stored.UpdatedAt = time.Now()
	cart.UpdatedAt = stored.UpdatedAt
	r.store.carts[cart.UserID] = stored
	return nil
}

// Checkout removes a non-empty cart.
func (r *MockCartRepository) Checkout(userID string) error {
	defer r.lock()()

	cart, ok := r.store.carts[userID]
	if !ok || len(cart.Items) == 0 {
		return fmt.Errorf("%w: cart for user %s was already checked out", models.ErrEmptyCart, userID)
	}
	delete(r.store.carts, userID)
	return nil
}

// Clear removes the user's cart.
func (r *MockCartRepository) Clear(userID string) error {
	defer r.lock()()

	delete(r.store.carts, userID)
	return nil
}
