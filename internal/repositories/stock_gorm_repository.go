package repositories

import (
	"fmt"

	"kulit/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStockAdjustmentRepository is a GORM implementation of the stock ledger.
type GORMStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGORMStockAdjustmentRepository creates a new instance of GORMStockAdjustmentRepository.
func NewGORMStockAdjustmentRepository(db *gorm.DB) *GORMStockAdjustmentRepository {
	return &GORMStockAdjustmentRepository{db: db}
}

// Create appends an adjustment record.
func (r *GORMStockAdjustmentRepository) Create(adjustment *models.StockAdjustment) error {
	if adjustment.ID == "" {
		adjustment.ID = uuid.New().String()
	}
	if err := r.db.Create(adjustment).Error; err != nil {
		return fmt.Errorf("failed to record stock adjustment: %w", err)
	}
	return nil
}

// GetByProductID returns a product's adjustments, oldest first.
func (r *GORMStockAdjustmentRepository) GetByProductID(productID string) ([]models.StockAdjustment, error) {
	var adjustments []models.StockAdjustment
	err := r.db.Where("product_id = ?", productID).Order("created_at, id").Find(&adjustments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stock history for product %s: %w", productID, err)
	}
	return adjustments, nil
}
