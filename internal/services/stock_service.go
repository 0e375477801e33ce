package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kulit/internal/metrics"
	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/google/uuid"
)

// StockService applies audited stock adjustments.
type StockService struct {
	txm         repositories.TxManager
	adjustments repositories.StockAdjustmentRepository
}

// NewStockService creates a new StockService.
func NewStockService(txm repositories.TxManager, adjustments repositories.StockAdjustmentRepository) *StockService {
	return &StockService{
		txm:         txm,
		adjustments: adjustments,
	}
}

// AdjustStock adds or removes quantity units and records the adjustment in
// the same unit of work. It returns the resulting stock level.
func (s *StockService) AdjustStock(ctx context.Context, productID string, adjType models.AdjustmentType, quantity int, reason string) (int, error) {
	if err := validateAdjustment(adjType, quantity, reason); err != nil {
		return 0, err
	}

	var newStock int
	err := s.txm.Transaction(ctx, func(repos repositories.Repositories) error {
		var err error
		newStock, err = applyAdjustment(repos, productID, adjType, quantity, reason)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[Stock] %s %d x %s (%s), stock now %d", adjType, quantity, productID, reason, newStock)
	return newStock, nil
}

// History returns the ledger of a product, oldest first.
func (s *StockService) History(productID string) ([]models.StockAdjustment, error) {
	return s.adjustments.GetByProductID(productID)
}

func validateAdjustment(adjType models.AdjustmentType, quantity int, reason string) error {
	if !adjType.Valid() {
		return fmt.Errorf("%w: adjustment type must be add or remove", models.ErrEmptyReason)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: adjustment quantity must be a positive integer", models.ErrInvalidQuantity)
	}
	if quantity > models.MaxStock {
		return fmt.Errorf("%w: adjustment quantity must not exceed %d", models.ErrInvalidQuantity, models.MaxStock)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: a reason is required for every stock adjustment", models.ErrEmptyReason)
	}
	return nil
}

// applyAdjustment mutates stock through the conditional repository update and
// appends the audit record. It must run inside a transaction.
func applyAdjustment(repos repositories.Repositories, productID string, adjType models.AdjustmentType, quantity int, reason string) (int, error) {
	if err := validateAdjustment(adjType, quantity, reason); err != nil {
		return 0, err
	}

	var (
		newStock int
		err      error
	)
	if adjType == models.AdjustmentRemove {
		newStock, err = repos.Products.DecrementStock(productID, quantity)
	} else {
		newStock, err = repos.Products.IncrementStock(productID, quantity)
	}
	if err != nil {
		return 0, err
	}

	adjustment := &models.StockAdjustment{
		ID:             uuid.New().String(),
		ProductID:      productID,
		Type:           adjType,
		Quantity:       quantity,
		Reason:         strings.TrimSpace(reason),
		ResultingStock: newStock,
		CreatedAt:      time.Now(),
	}
	if err := repos.Adjustments.Create(adjustment); err != nil {
		return 0, err
	}
	metrics.StockAdjustments.WithLabelValues(string(adjType)).Inc()
	return newStock, nil
}
