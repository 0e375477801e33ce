package repositories

import (
	"context"

	"kulit/internal/models"

	"gorm.io/gorm"
)

// NewGORMRepositories binds the transactional repositories to db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:    NewGORMProductRepository(db),
		Carts:       NewGORMCartRepository(db),
		Orders:      NewGORMOrderRepository(db),
		Adjustments: NewGORMStockAdjustmentRepository(db),
	}
}

// GORMTxManager runs units of work inside a database transaction.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

// Transaction commits when fn returns nil and rolls back otherwise.
func (m *GORMTxManager) Transaction(ctx context.Context, fn func(repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRepositories(tx))
	})
}

// AutoMigrate creates or updates every table the store needs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.Order{},
		&models.StockAdjustment{},
		&models.ShippingRate{},
	)
}
