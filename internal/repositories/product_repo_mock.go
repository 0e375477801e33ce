package repositories

import (
	"fmt"
	"sort"
	"time"

	"kulit/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	memoryView
}

// GetAll returns all products ordered by creation time.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	defer r.lock()()

	productList := make([]models.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].CreatedAt.Before(productList[j].CreatedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	defer r.lock()()

	product, ok := r.store.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s %w", id, models.ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	defer r.lock()()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.store.products[product.ID] = *product
	return nil
}

// Update modifies the catalog fields of an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	defer r.lock()()

	existing, ok := r.store.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s %w for update", product.ID, models.ErrNotFound)
	}
	updated := *product
	updated.Stock = existing.Stock
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.store.products[product.ID] = updated
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	defer r.lock()()

	if _, ok := r.store.products[id]; !ok {
		return fmt.Errorf("product with ID %s %w for deletion", id, models.ErrNotFound)
	}
	delete(r.store.products, id)
	return nil
}

// DecrementStock removes quantity only if enough stock is available.
func (r *MockProductRepository) DecrementStock(id string, quantity int) (int, error) {
	defer r.lock()()

	product, ok := r.store.products[id]
	if !ok {
		return 0, fmt.Errorf("product with ID %s %w", id, models.ErrNotFound)
	}
	if product.Stock < quantity {
		return 0, models.NewStockError(&product, quantity)
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now()
	r.store.products[id] = product
	return product.Stock, nil
}

// IncrementStock adds quantity to the product's stock.
func (r *MockProductRepository) IncrementStock(id string, quantity int) (int, error) {
	defer r.lock()()

	product, ok := r.store.products[id]
	if !ok {
		return 0, fmt.Errorf("product with ID %s %w", id, models.ErrNotFound)
	}
	if quantity > models.MaxStock-product.Stock {
		return 0, fmt.Errorf("%w: stock of product %s cannot exceed %d", models.ErrInvalidQuantity, id, models.MaxStock)
	}
	product.Stock += quantity
	product.UpdatedAt = time.Now()
	r.store.products[id] = product
	return product.Stock, nil
}
