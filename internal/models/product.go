package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus controls whether a product can be browsed and bought.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductDraft    ProductStatus = "draft"
	ProductArchived ProductStatus = "archived"
)

// Product represents a product in the catalog.
type Product struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name           string          `json:"name" validate:"required,min=3,max=100"`
	Description    string          `json:"description" validate:"omitempty,max=2000"`
	Image          string          `json:"image" validate:"omitempty,max=500"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock          int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	StockThreshold int             `json:"stock_threshold" gorm:"not null;default:0" validate:"gte=0"`
	Colors         []string        `json:"colors" gorm:"serializer:json"`
	Status         ProductStatus   `json:"status" gorm:"type:varchar(16);index;default:active" validate:"omitempty,oneof=active draft archived"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the stock level has reached the product's threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.StockThreshold
}

// HasColor reports whether color is one of the product's colors.
// Products without any configured colors accept an empty color only.
func (p *Product) HasColor(color string) bool {
	if len(p.Colors) == 0 {
		return color == ""
	}
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
