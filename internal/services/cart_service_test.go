package services_test

import (
	"context"
	"testing"

	"kulit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)
			wallet := f.createProduct(t, "Bifold Wallet", 1000, 5, "Brown", "Black")

			cart, err := f.carts.AddItem("user-1", wallet.ID, "Brown", 2)
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 2, cart.Items[0].Quantity)
			assert.Equal(t, 2, cart.ItemCount)
			assertMoney(t, "2000", cart.CartTotal)
			assert.True(t, cart.Items[0].Available)

			// Same product in another color is a separate line.
			cart, err = f.carts.AddItem("user-1", wallet.ID, "Black", 1)
			require.NoError(t, err)
			assert.Len(t, cart.Items, 2)
			assert.Equal(t, 3, cart.ItemCount)
		})
	}
}

func TestCartService_AddItemMergesAndClamps(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)
			belt := f.createProduct(t, "Braided Belt", 500, 4, "Tan")

			_, err := f.carts.AddItem("user-1", belt.ID, "Tan", 3)
			require.NoError(t, err)
			cart, err := f.carts.AddItem("user-1", belt.ID, "Tan", 3)
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 4, cart.Items[0].Quantity, "merged quantity is clamped to live stock")

			bag := f.createProduct(t, "Messenger Bag", 800, 50)
			_, err = f.carts.AddItem("user-1", bag.ID, "", 8)
			require.NoError(t, err)
			cart, err = f.carts.AddItem("user-1", bag.ID, "", 8)
			require.NoError(t, err)
			idx := -1
			for i, line := range cart.Items {
				if line.ProductID == bag.ID {
					idx = i
				}
			}
			require.GreaterOrEqual(t, idx, 0)
			assert.Equal(t, models.MaxItemQuantity, cart.Items[idx].Quantity, "merged quantity is clamped to the per-line maximum")
		})
	}
}

func TestCartService_AddItemRejections(t *testing.T) {
	f := newFixture(t, "memory", nil)
	wallet := f.createProduct(t, "Bifold Wallet", 1000, 2, "Brown")
	empty := f.createProduct(t, "Card Holder", 300, 0)

	_, err := f.carts.AddItem("user-1", "missing", "Brown", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.carts.AddItem("user-1", wallet.ID, "Green", 1)
	assert.ErrorIs(t, err, models.ErrInvalidColor)

	_, err = f.carts.AddItem("user-1", empty.ID, "", 1)
	assert.ErrorIs(t, err, models.ErrOutOfStock)

	for _, qty := range []int{0, -1, models.MaxItemQuantity + 1} {
		_, err = f.carts.AddItem("user-1", wallet.ID, "Brown", qty)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity, "quantity %d", qty)
	}

	_, err = f.carts.AddItem("user-1", wallet.ID, "Brown", 3)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.NotErrorIs(t, err, models.ErrOutOfStock)
	var stockErr *models.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Contains(t, err.Error(), "only 2 left in stock")

	draft := &models.Product{Name: "Prototype Tote", Price: decimal.NewFromInt(900), Stock: 5, Status: models.ProductDraft}
	require.NoError(t, f.products.CreateProduct(context.Background(), draft))
	_, err = f.carts.AddItem("user-1", draft.ID, "", 1)
	assert.ErrorIs(t, err, models.ErrProductUnavailable)

	cart, err := f.carts.GetCart("user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "rejected additions leave the cart untouched")
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)
			wallet := f.createProduct(t, "Bifold Wallet", 1000, 5, "Brown")

			_, err := f.carts.AddItem("user-1", wallet.ID, "Brown", 1)
			require.NoError(t, err)

			cart, err := f.carts.UpdateItem("user-1", wallet.ID, "Brown", 4)
			require.NoError(t, err)
			assert.Equal(t, 4, cart.Items[0].Quantity)

			_, err = f.carts.UpdateItem("user-1", wallet.ID, "Brown", 6)
			assert.ErrorIs(t, err, models.ErrInsufficientStock)

			_, err = f.carts.UpdateItem("user-1", wallet.ID, "Brown", models.MaxItemQuantity+1)
			assert.ErrorIs(t, err, models.ErrInvalidQuantity)

			_, err = f.carts.UpdateItem("user-1", wallet.ID, "Black", 1)
			assert.ErrorIs(t, err, models.ErrNotFound)

			cart, err = f.carts.UpdateItem("user-1", wallet.ID, "Brown", 0)
			require.NoError(t, err)
			assert.Empty(t, cart.Items)

			// Removing an absent line is a no-op.
			cart, err = f.carts.RemoveItem("user-1", wallet.ID, "Brown")
			require.NoError(t, err)
			assert.Empty(t, cart.Items)
		})
	}
}

func TestCartService_UpdateItemRechecksProduct(t *testing.T) {
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			f := newFixture(t, driver, nil)
			belt := f.createProduct(t, "Braided Belt", 500, 8, "Black", "Tan")
			_, err := f.carts.AddItem("user-1", belt.ID, "Black", 1)
			require.NoError(t, err)
			_, err = f.carts.AddItem("user-1", belt.ID, "Tan", 1)
			require.NoError(t, err)

			belt.Colors = []string{"Black"}
			require.NoError(t, f.products.UpdateProduct(belt))
			_, err = f.carts.UpdateItem("user-1", belt.ID, "Tan", 3)
			assert.ErrorIs(t, err, models.ErrInvalidColor)

			belt.Status = models.ProductArchived
			require.NoError(t, f.products.UpdateProduct(belt))
			_, err = f.carts.UpdateItem("user-1", belt.ID, "Black", 3)
			assert.ErrorIs(t, err, models.ErrProductUnavailable)

			cart, err := f.carts.GetCart("user-1")
			require.NoError(t, err)
			require.Len(t, cart.Items, 2)
			for _, item := range cart.Items {
				assert.Equal(t, 1, item.Quantity)
			}

			// Lowering to zero still works so the line can be dropped.
			cart, err = f.carts.UpdateItem("user-1", belt.ID, "Tan", 0)
			require.NoError(t, err)
			assert.Len(t, cart.Items, 1)
		})
	}
}

func TestCartService_GetCartAnnotatesLiveState(t *testing.T) {
	f := newFixture(t, "memory", nil)
	wallet := f.createProduct(t, "Bifold Wallet", 1000, 5, "Brown")

	_, err := f.carts.AddItem("user-1", wallet.ID, "Brown", 3)
	require.NoError(t, err)

	live, err := f.products.GetProductByID(wallet.ID)
	require.NoError(t, err)
	live.Price = decimal.NewFromInt(1200)
	require.NoError(t, f.products.UpdateProduct(live))
	_, err = f.stock.AdjustStock(context.Background(), wallet.ID, models.AdjustmentRemove, 3, "damaged in storage")
	require.NoError(t, err)

	cart, err := f.carts.GetCart("user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	line := cart.Items[0]
	assertMoney(t, "1000", line.Price)
	assertMoney(t, "1200", line.LivePrice)
	assert.True(t, line.PriceDrift)
	assert.Equal(t, 2, line.LiveStock)
	assert.False(t, line.Available)
	assertMoney(t, "3000", cart.CartTotal)
}

func TestCartService_Clear(t *testing.T) {
	f := newFixture(t, "sqlite", nil)
	wallet := f.createProduct(t, "Bifold Wallet", 1000, 5, "Brown")

	_, err := f.carts.AddItem("user-1", wallet.ID, "Brown", 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem("user-2", wallet.ID, "Brown", 1)
	require.NoError(t, err)

	require.NoError(t, f.carts.Clear("user-1"))

	cart, err := f.carts.GetCart("user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	other, err := f.carts.GetCart("user-2")
	require.NoError(t, err)
	assert.Len(t, other.Items, 1)
}
