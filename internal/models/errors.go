package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by repositories, services and handlers.
// Callers wrap these with fmt.Errorf("%w: ...") to add an actionable message.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrOutOfStock           = errors.New("out of stock")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrEmptyReason          = errors.New("reason or required field is missing")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidColor         = errors.New("color not available")
	ErrProductUnavailable   = errors.New("product is not available for sale")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrForbidden            = errors.New("forbidden")
)

// StockError reports that a product cannot cover a requested quantity.
// It matches ErrInsufficientStock, and ErrOutOfStock when nothing is left.
type StockError struct {
	ProductID string
	Product   string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", e.Product)
	}
	return fmt.Sprintf("only %d left in stock for %s (requested %d)", e.Available, e.Product, e.Requested)
}

// Is lets errors.Is match the taxonomy sentinels.
func (e *StockError) Is(target error) bool {
	switch target {
	case ErrInsufficientStock:
		return true
	case ErrOutOfStock:
		return e.Available <= 0
	}
	return false
}

// NewStockError builds a StockError for p.
func NewStockError(p *Product, requested int) *StockError {
	return &StockError{ProductID: p.ID, Product: p.Name, Available: p.Stock, Requested: requested}
}
