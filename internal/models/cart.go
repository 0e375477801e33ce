package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxItemQuantity is the largest quantity a single cart line may hold.
	MaxItemQuantity = 10
	// MinItemQuantity is the smallest quantity accepted when adding to the cart.
	MinItemQuantity = 1
)

// CartItem is one (product, color) line in a cart. Price and Stock are
// snapshots taken when the line was last written and are advisory only.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// Subtotal is price × quantity for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the per-user working set. It is stored as a single document row.
type Cart struct {
	UserID    string     `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Items     []CartItem `json:"items" gorm:"serializer:json"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Find returns the index of the (productID, color) line, or -1.
func (c *Cart) Find(productID, color string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Color == color {
			return i
		}
	}
	return -1
}

// Remove drops the (productID, color) line. It reports whether a line was removed.
func (c *Cart) Remove(productID, color string) bool {
	idx := c.Find(productID, color)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// Total sums price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums quantities over all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartLineView annotates a cart line with the live catalog state.
type CartLineView struct {
	CartItem
	LivePrice  decimal.Decimal `json:"live_price"`
	LiveStock  int             `json:"live_stock"`
	Available  bool            `json:"available"`
	PriceDrift bool            `json:"price_changed"`
}

// CartView is the read model returned to clients. Totals are derived, never stored.
type CartView struct {
	UserID    string          `json:"user_id"`
	Items     []CartLineView  `json:"items"`
	CartTotal decimal.Decimal `json:"cart_total"`
	ItemCount int             `json:"item_count"`
	UpdatedAt time.Time       `json:"updated_at"`
}
