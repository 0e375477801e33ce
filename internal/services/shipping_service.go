package services

import (
	"errors"
	"fmt"
	"strings"

	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/shopspring/decimal"
)

// ShippingConfig holds the fee fallback and the free-shipping threshold.
// A non-positive threshold disables free shipping.
type ShippingConfig struct {
	DefaultFee            decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// ShippingService resolves delivery fees from the per-region rate table.
type ShippingService struct {
	rates repositories.ShippingRateRepository
	cfg   ShippingConfig
}

// NewShippingService creates a new ShippingService.
func NewShippingService(rates repositories.ShippingRateRepository, cfg ShippingConfig) *ShippingService {
	return &ShippingService{
		rates: rates,
		cfg:   cfg,
	}
}

// NormalizeRegion is the key format of the rate table.
func NormalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// ResolveFee looks up the address city, then its state or region, and falls
// back to the default fee.
func (s *ShippingService) ResolveFee(address models.ShippingAddress) (decimal.Decimal, error) {
	for _, region := range []string{address.City, address.State} {
		key := NormalizeRegion(region)
		if key == "" {
			continue
		}
		rate, err := s.rates.GetByRegion(key)
		if err == nil {
			return rate.Fee, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return decimal.Zero, err
		}
	}
	return s.cfg.DefaultFee, nil
}

// IsFreeShipping reports whether subtotal reaches the free-shipping threshold.
func (s *ShippingService) IsFreeShipping(subtotal decimal.Decimal) bool {
	return s.cfg.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(s.cfg.FreeShippingThreshold)
}

// ApplyThreshold returns zero when subtotal qualifies for free shipping and
// regionFee otherwise.
func (s *ShippingService) ApplyThreshold(regionFee, subtotal decimal.Decimal) decimal.Decimal {
	if s.IsFreeShipping(subtotal) {
		return decimal.Zero
	}
	return regionFee
}

// FeeFor resolves the fee for address and applies the free-shipping threshold.
func (s *ShippingService) FeeFor(address models.ShippingAddress, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if s.IsFreeShipping(subtotal) {
		return decimal.Zero, nil
	}
	return s.ResolveFee(address)
}

// Config returns the fee fallback and threshold in effect.
func (s *ShippingService) Config() ShippingConfig {
	return s.cfg
}

// Rates lists the configured per-region fees.
func (s *ShippingService) Rates() ([]models.ShippingRate, error) {
	return s.rates.GetAll()
}

// SetRate creates or replaces the fee for region.
func (s *ShippingService) SetRate(region string, fee decimal.Decimal) (*models.ShippingRate, error) {
	key := NormalizeRegion(region)
	if key == "" {
		return nil, fmt.Errorf("%w: region is required", models.ErrEmptyReason)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("%w: shipping fee must not be negative", models.ErrInvalidAmount)
	}
	rate := &models.ShippingRate{Region: key, Fee: fee}
	if err := s.rates.Upsert(rate); err != nil {
		return nil, err
	}
	return rate, nil
}
