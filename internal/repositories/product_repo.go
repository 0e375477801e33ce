package repositories

import (
	"kulit/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	// Update writes the catalog fields of a product. Stock is left untouched;
	// stock only moves through DecrementStock and IncrementStock.
	Update(product *models.Product) error
	Delete(id string) error
	// DecrementStock removes quantity from stock only if at least quantity is
	// available, as a single conditional update. It returns the new stock.
	DecrementStock(id string, quantity int) (int, error)
	// IncrementStock adds quantity to stock and returns the new stock. It
	// fails with ErrInvalidQuantity when the result would exceed MaxStock.
	IncrementStock(id string, quantity int) (int, error)
}
