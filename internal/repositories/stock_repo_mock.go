package repositories

import (
	"time"

	"kulit/internal/models"

	"github.com/google/uuid"
)

// MockStockAdjustmentRepository is an in-memory stock ledger.
type MockStockAdjustmentRepository struct {
	memoryView
}

// Create appends an adjustment.
func (r *MockStockAdjustmentRepository) Create(adjustment *models.StockAdjustment) error {
	defer r.lock()()

	if adjustment.ID == "" {
		adjustment.ID = uuid.New().String()
	}
	if adjustment.CreatedAt.IsZero() {
		adjustment.CreatedAt = time.Now()
	}
	r.store.adjustments = append(r.store.adjustments, *adjustment)
	return nil
}

// GetByProductID returns a product's adjustments in insertion order.
func (r *MockStockAdjustmentRepository) GetByProductID(productID string) ([]models.StockAdjustment, error) {
	defer r.lock()()

	var history []models.StockAdjustment
	for _, adj := range r.store.adjustments {
		if adj.ProductID == productID {
			history = append(history, adj)
		}
	}
	return history, nil
}
