package repositories

import "kulit/internal/models"

// ShippingRateRepository defines the interface for the per-region fee table.
type ShippingRateRepository interface {
	GetAll() ([]models.ShippingRate, error)
	GetByRegion(region string) (*models.ShippingRate, error)
	Upsert(rate *models.ShippingRate) error
}
