package services_test

import (
	"context"
	"testing"

	"kulit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateProduct(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)

			product := &models.Product{
				Name:           "Leather Messenger Bag",
				Price:          decimal.RequireFromString("8500.50"),
				Stock:          8,
				StockThreshold: 2,
				Colors:         []string{"Brown", "Black"},
			}
			require.NoError(t, f.products.CreateProduct(context.Background(), product))
			assert.NotEmpty(t, product.ID)
			assert.Equal(t, models.ProductActive, product.Status)
			assert.Equal(t, 8, product.Stock)

			stored, err := f.products.GetProductByID(product.ID)
			require.NoError(t, err)
			assert.Equal(t, 8, stored.Stock)
			assertMoney(t, "8500.50", stored.Price)
			assert.Equal(t, []string{"Brown", "Black"}, stored.Colors)

			history, err := f.stock.History(product.ID)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, models.AdjustmentAdd, history[0].Type)
			assert.Equal(t, "initial stock", history[0].Reason)
		})
	}
}

func TestProductService_CreateProductValidation(t *testing.T) {
	f := newFixture(t, "memory", nil)
	ctx := context.Background()

	err := f.products.CreateProduct(ctx, &models.Product{Name: "Free Sample", Price: decimal.Zero})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	err = f.products.CreateProduct(ctx, &models.Product{Name: "Broken Count", Price: decimal.NewFromInt(10), Stock: -1})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	err = f.products.CreateProduct(ctx, &models.Product{Name: "Bad Threshold", Price: decimal.NewFromInt(10), StockThreshold: -3})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	products, err := f.products.GetAllProducts("")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_UpdateProductKeepsStock(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)
			wallet := f.createProduct(t, "Bifold Wallet", 1000, 5)

			update := &models.Product{
				ID:          wallet.ID,
				Name:        "Slim Bifold Wallet",
				Description: "Now thinner",
				Price:       decimal.NewFromInt(1100),
				Stock:       999,
			}
			require.NoError(t, f.products.UpdateProduct(update))
			assert.Equal(t, "Slim Bifold Wallet", update.Name)
			assert.Equal(t, 5, update.Stock, "stock only changes through the ledger")
			assert.Equal(t, models.ProductActive, update.Status)

			missing := &models.Product{ID: "missing", Name: "Ghost", Price: decimal.NewFromInt(1)}
			assert.ErrorIs(t, f.products.UpdateProduct(missing), models.ErrNotFound)
		})
	}
}

func TestProductService_StatusFilterAndDelete(t *testing.T) {
	f := newFixture(t, "sqlite", nil)
	ctx := context.Background()
	wallet := f.createProduct(t, "Bifold Wallet", 1000, 5)
	draft := &models.Product{Name: "Prototype Tote", Price: decimal.NewFromInt(900), Status: models.ProductDraft}
	require.NoError(t, f.products.CreateProduct(ctx, draft))

	all, err := f.products.GetAllProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.products.GetAllProducts(models.ProductActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, wallet.ID, active[0].ID)

	require.NoError(t, f.products.DeleteProduct(draft.ID))
	_, err = f.products.GetProductByID(draft.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.products.DeleteProduct(draft.ID), models.ErrNotFound)
}
