package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingAddress is an immutable value embedded in orders.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
}

// ShippingRate is the delivery fee for one city or region.
type ShippingRate struct {
	Region    string          `json:"region" gorm:"primaryKey;type:varchar(100)" validate:"required,max=100"`
	Fee       decimal.Decimal `json:"fee" gorm:"type:decimal(12,2)"`
	UpdatedAt time.Time       `json:"updated_at"`
}
