package models

import "time"

// MaxStock is the largest stock level a product may hold.
const MaxStock = 1_000_000

// AdjustmentType is the direction of a stock adjustment.
type AdjustmentType string

const (
	AdjustmentAdd    AdjustmentType = "add"
	AdjustmentRemove AdjustmentType = "remove"
)

// Valid reports whether t is a known adjustment type.
func (t AdjustmentType) Valid() bool {
	return t == AdjustmentAdd || t == AdjustmentRemove
}

// StockAdjustment is an append-only audit record of a stock change.
type StockAdjustment struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID      string         `json:"product_id" gorm:"type:varchar(36);index"`
	Type           AdjustmentType `json:"type" gorm:"type:varchar(8)"`
	Quantity       int            `json:"quantity"`
	Reason         string         `json:"reason"`
	ResultingStock int            `json:"resulting_stock"`
	CreatedAt      time.Time      `json:"created_at" gorm:"index"`
}
