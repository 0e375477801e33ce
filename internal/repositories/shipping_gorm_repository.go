package repositories

import (
	"errors"
	"fmt"

	"kulit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMShippingRateRepository is a GORM implementation of ShippingRateRepository.
type GORMShippingRateRepository struct {
	db *gorm.DB
}

// NewGORMShippingRateRepository creates a new instance of GORMShippingRateRepository.
func NewGORMShippingRateRepository(db *gorm.DB) *GORMShippingRateRepository {
	return &GORMShippingRateRepository{db: db}
}

// GetAll returns every configured rate ordered by region.
func (r *GORMShippingRateRepository) GetAll() ([]models.ShippingRate, error) {
	var rates []models.ShippingRate
	if err := r.db.Order("region").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to get shipping rates: %w", err)
	}
	return rates, nil
}

// GetByRegion looks up the rate for a normalized region key.
func (r *GORMShippingRateRepository) GetByRegion(region string) (*models.ShippingRate, error) {
	var rate models.ShippingRate
	if err := r.db.First(&rate, "region = ?", region).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shipping rate for %s %w", region, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shipping rate for %s: %w", region, err)
	}
	return &rate, nil
}

// Upsert inserts or replaces the rate for its region.
func (r *GORMShippingRateRepository) Upsert(rate *models.ShippingRate) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"fee", "updated_at"}),
	}).Create(rate).Error
	if err != nil {
		return fmt.Errorf("failed to save shipping rate for %s: %w", rate.Region, err)
	}
	return nil
}
