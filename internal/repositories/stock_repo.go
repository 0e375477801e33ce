package repositories

import "kulit/internal/models"

// StockAdjustmentRepository is the append-only stock ledger.
type StockAdjustmentRepository interface {
	Create(adjustment *models.StockAdjustment) error
	GetByProductID(productID string) ([]models.StockAdjustment, error)
}
