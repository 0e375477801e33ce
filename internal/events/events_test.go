package events_test

import (
	"testing"

	"kulit/internal/events"
	"kulit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent(t *testing.T) {
	order := &models.Order{
		ID:     "o-1",
		UserID: "user-1",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Bifold Wallet", Color: "Brown", Quantity: 2, Price: decimal.NewFromInt(1200)},
		},
		ShippingAddress: models.ShippingAddress{Name: "Ayesha Khan", Email: "ayesha@example.com"},
		Total:           decimal.NewFromInt(2700),
		Status:          models.StatusCancelled,
	}

	e := events.NewOrderEvent(events.RoutingOrderStatusChanged, order, models.StatusPending)
	body, err := e.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"previous_status":"pending"`)

	decoded, err := events.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "o-1", decoded.OrderID)
	assert.Equal(t, "ayesha@example.com", decoded.Email)
	assert.Equal(t, "cancelled", decoded.Status)
	require.Len(t, decoded.Items, 1)
	assert.True(t, decimal.NewFromInt(1200).Equal(decoded.Items[0].Price))
	assert.True(t, decimal.NewFromInt(2700).Equal(decoded.Total))

	created, err := events.NewOrderEvent(events.RoutingOrderCreated, order, "").Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(created), "previous_status")
}
