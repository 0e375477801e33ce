package services

import (
	"context"
	"fmt"
	"time"

	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/google/uuid"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
	txm  repositories.TxManager
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, txm repositories.TxManager) *ProductService {
	return &ProductService{
		repo: repo,
		txm:  txm,
	}
}

// GetAllProducts retrieves all products, optionally filtered by status.
func (s *ProductService) GetAllProducts(status models.ProductStatus) ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil || status == "" {
		return products, err
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// LowStockProducts lists active products at or below their stock threshold.
func (s *ProductService) LowStockProducts() ([]models.Product, error) {
	products, err := s.GetAllProducts(models.ProductActive)
	if err != nil {
		return nil, err
	}
	low := make([]models.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// CreateProduct creates a new product. Any initial stock is booked through
// the ledger so that every unit is accounted for.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", models.ErrInvalidQuantity)
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}

	initial := product.Stock
	return s.txm.Transaction(ctx, func(repos repositories.Repositories) error {
		product.Stock = 0
		if err := repos.Products.Create(product); err != nil {
			return err
		}
		if initial == 0 {
			return nil
		}
		stock, err := applyAdjustment(repos, product.ID, models.AdjustmentAdd, initial, "initial stock")
		if err != nil {
			return err
		}
		product.Stock = stock
		return nil
	})
}

// UpdateProduct updates the catalog fields of a product. Stock changes go
// through StockService.AdjustStock.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	if product.Status == "" {
		product.Status = existing.Status
	}
	if err := s.repo.Update(product); err != nil {
		return err
	}
	updated, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	*product = *updated
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func validateProduct(product *models.Product) error {
	if !product.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", models.ErrInvalidAmount)
	}
	if product.StockThreshold < 0 {
		return fmt.Errorf("%w: stock threshold must not be negative", models.ErrInvalidQuantity)
	}
	product.UpdatedAt = time.Now()
	return nil
}
