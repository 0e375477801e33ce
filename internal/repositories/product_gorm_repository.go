package repositories

import (
	"errors"
	"fmt"
	"time"

	"kulit/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates the catalog fields of an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{ID: product.ID}).
		Select("name", "description", "image", "price", "stock_threshold", "colors", "status", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s %w for update", product.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s %w for deletion", id, models.ErrNotFound)
	}
	return nil
}

// DecrementStock runs "stock = stock - n WHERE stock >= n". A miss is
// resolved into ErrNotFound or a *models.StockError.
func (r *GORMProductRepository) DecrementStock(id string, quantity int) (int, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		product, err := r.GetByID(id)
		if err != nil {
			return 0, err
		}
		return 0, models.NewStockError(product, quantity)
	}
	return r.currentStock(id)
}

// IncrementStock adds quantity to the product's stock as long as the result
// stays within models.MaxStock.
func (r *GORMProductRepository) IncrementStock(id string, quantity int) (int, error) {
	if quantity > models.MaxStock {
		return 0, fmt.Errorf("%w: stock cannot exceed %d", models.ErrInvalidQuantity, models.MaxStock)
	}
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock <= ?", id, models.MaxStock-quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: stock of product %s cannot exceed %d", models.ErrInvalidQuantity, id, models.MaxStock)
	}
	return r.currentStock(id)
}

func (r *GORMProductRepository) currentStock(id string) (int, error) {
	var stock int
	row := r.db.Model(&models.Product{}).Select("stock").Where("id = ?", id).Row()
	if err := row.Scan(&stock); err != nil {
		return 0, fmt.Errorf("failed to read stock for product %s: %w", id, err)
	}
	return stock, nil
}
