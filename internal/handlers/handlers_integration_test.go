package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"kulit/internal/handlers"
	"kulit/internal/middleware"
	"kulit/internal/models"
	"kulit/internal/repositories"
	"kulit/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test_jwt_secret"

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.AutoMigrate(db))

	repos := repositories.NewGORMRepositories(db)
	txm := repositories.NewGORMTxManager(db)

	shippingService := services.NewShippingService(repositories.NewGORMShippingRateRepository(db), services.ShippingConfig{
		DefaultFee:            decimal.NewFromInt(250),
		FreeShippingThreshold: decimal.NewFromInt(5000),
	})
	_, err = shippingService.SetRate("karachi", decimal.NewFromInt(300))
	require.NoError(t, err)
	productService := services.NewProductService(repos.Products, txm)
	stockService := services.NewStockService(txm, repos.Adjustments)
	cartService := services.NewCartService(repos.Carts, repos.Products)
	orderService := services.NewOrderService(txm, repos, cartService, shippingService, nil)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), testJWTSecret)
	require.NoError(t, authService.EnsureAdmin("admin", "admin@example.com", "adminpassword"))

	productHandler := handlers.NewProductHandler(productService, stockService)
	orderHandler := handlers.NewOrderHandler(orderService)
	shippingHandler := handlers.NewShippingHandler(shippingService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	shippingHandler.RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	shippingHandler.RegisterAdminRoutes(admin)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewCartHandler(cartService).RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// call performs a request and decodes a JSON response into out when non-nil.
func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	var loginResp map[string]string
	status := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &loginResp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func registerCustomer(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status := call(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	return login(t, app, username, "password123")
}

func createProduct(t *testing.T, app *fiber.App, adminToken string, name string, price, stock int, colors ...string) models.Product {
	t.Helper()
	var product models.Product
	status := call(t, app, http.MethodPost, "/api/v1/admin/products", adminToken, map[string]interface{}{
		"name":   name,
		"price":  price,
		"stock":  stock,
		"colors": colors,
	}, &product)
	require.Equal(t, http.StatusCreated, status)
	return product
}

var karachiAddress = map[string]interface{}{
	"shipping_address": map[string]string{
		"name":   "Ayesha Khan",
		"email":  "ayesha@example.com",
		"phone":  "+923001234567",
		"street": "12 Clifton Block 5",
		"city":   "Karachi",
	},
	"payment_method": "cod",
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
		"role":     "admin",
	}
	var registerResp map[string]interface{}
	status := call(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister, &registerResp)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	user := registerResp["user"].(map[string]interface{})
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "password")

	// Test Duplicate Registration (username)
	status = call(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Test invalid body
	status = call(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	token := login(t, app, "testuser", "password123")

	// A self-registered account cannot reach the back office.
	status = call(t, app, http.MethodGet, "/api/v1/admin/orders", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogIsPublicButAdminIsNot(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")
	wallet := createProduct(t, app, adminToken, "Bifold Wallet", 1000, 5, "Brown")

	var draft models.Product
	status := call(t, app, http.MethodPost, "/api/v1/admin/products", adminToken, map[string]interface{}{
		"name":   "Prototype Tote",
		"price":  900,
		"status": "draft",
	}, &draft)
	require.Equal(t, http.StatusCreated, status)

	var products []models.Product
	status = call(t, app, http.MethodGet, "/api/v1/products", "", nil, &products)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, products, 1)
	assert.Equal(t, wallet.ID, products[0].ID)

	status = call(t, app, http.MethodGet, "/api/v1/products/"+draft.ID, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = call(t, app, http.MethodGet, "/api/v1/admin/products", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var all []models.Product
	status = call(t, app, http.MethodGet, "/api/v1/admin/products", adminToken, nil, &all)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 2)

	var errResp map[string]interface{}
	status = call(t, app, http.MethodPost, "/api/v1/admin/products", adminToken, map[string]interface{}{
		"name":  "Free Sample",
		"price": 0,
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_amount", errResp["code"])
}

func TestStockAdjustmentEndpoints(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")
	wallet := createProduct(t, app, adminToken, "Bifold Wallet", 1000, 5)
	path := fmt.Sprintf("/api/v1/admin/products/%s/stock", wallet.ID)

	var adjusted map[string]interface{}
	status := call(t, app, http.MethodPost, path, adminToken, map[string]interface{}{
		"type": "add", "quantity": 3, "reason": "supplier delivery",
	}, &adjusted)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 8, adjusted["stock"])

	var errResp map[string]interface{}
	status = call(t, app, http.MethodPost, path, adminToken, map[string]interface{}{
		"type": "remove", "quantity": 20, "reason": "stocktake",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_stock", errResp["code"])
	assert.EqualValues(t, 8, errResp["available"])

	status = call(t, app, http.MethodPost, path, adminToken, map[string]interface{}{
		"type": "remove", "quantity": 1, "reason": "",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing_field", errResp["code"])

	var history []models.StockAdjustment
	status = call(t, app, http.MethodGet, path, adminToken, nil, &history)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, history, 2)
}

func TestCheckoutFlow(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")
	token := registerCustomer(t, app, "ayesha")
	wallet := createProduct(t, app, adminToken, "Bifold Wallet", 1000, 5, "Brown")

	// Cart endpoints require a token.
	status := call(t, app, http.MethodGet, "/api/v1/cart", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var errResp map[string]interface{}
	status = call(t, app, http.MethodPost, "/api/v1/orders", token, karachiAddress, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "empty_cart", errResp["code"])

	var cart models.CartView
	status = call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": wallet.ID, "color": "Brown", "quantity": 2,
	}, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, cart.ItemCount)

	status = call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": wallet.ID, "color": "Brown", "quantity": 11,
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_quantity", errResp["code"])

	// Price rises after the item was added; checkout charges the live price.
	status = call(t, app, http.MethodPut, "/api/v1/admin/products/"+wallet.ID, adminToken, map[string]interface{}{
		"name": "Bifold Wallet", "price": 1200, "colors": []string{"Brown"},
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var quote services.CheckoutQuote
	status = call(t, app, http.MethodPost, "/api/v1/checkout/quote", token, karachiAddress, &quote)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.NewFromInt(2700).Equal(quote.Total))

	var placed services.OrderResult
	status = call(t, app, http.MethodPost, "/api/v1/orders", token, karachiAddress, &placed)
	require.Equal(t, http.StatusCreated, status)
	order := placed.Order
	require.NotNil(t, order)
	assert.True(t, decimal.NewFromInt(2400).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(300).Equal(order.ShippingFee))
	assert.True(t, decimal.NewFromInt(2700).Equal(order.Total))

	var product models.Product
	call(t, app, http.MethodGet, "/api/v1/products/"+wallet.ID, "", nil, &product)
	assert.Equal(t, 3, product.Stock)

	call(t, app, http.MethodGet, "/api/v1/cart", token, nil, &cart)
	assert.Empty(t, cart.Items)

	var mine []models.Order
	status = call(t, app, http.MethodGet, "/api/v1/orders", token, nil, &mine)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, mine, 1)

	// Another customer cannot see the order.
	other := registerCustomer(t, app, "bilal")
	status = call(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, other, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	statusPath := fmt.Sprintf("/api/v1/admin/orders/%s/status", order.ID)
	status = call(t, app, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "delivered"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_transition", errResp["code"])

	status = call(t, app, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "processing"}, nil)
	assert.Equal(t, http.StatusOK, status)

	var shipped services.OrderResult
	status = call(t, app, http.MethodPatch, statusPath, adminToken, map[string]string{
		"status": "shipped", "carrier": "TCS", "tracking_number": "TCS-778899",
	}, &shipped)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "TCS-778899", shipped.Order.TrackingNumber)

	// Shipped orders can no longer be cancelled by the customer.
	status = call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", order.ID), token, nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	var shippedOrders []models.Order
	status = call(t, app, http.MethodGet, "/api/v1/admin/orders?status=shipped", adminToken, nil, &shippedOrders)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, shippedOrders, 1)
}

func TestCheckoutRejectsOversell(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")
	token := registerCustomer(t, app, "ayesha")
	wallet := createProduct(t, app, adminToken, "Bifold Wallet", 1000, 5)

	status := call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": wallet.ID, "quantity": 3,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	status = call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/admin/products/%s/stock", wallet.ID), adminToken, map[string]interface{}{
		"type": "remove", "quantity": 3, "reason": "sold in shop",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var errResp map[string]interface{}
	status = call(t, app, http.MethodPost, "/api/v1/orders", token, karachiAddress, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "insufficient_stock", errResp["code"])
	assert.EqualValues(t, 2, errResp["available"])
	assert.Contains(t, errResp["error"], "only 2 left in stock")

	var cart models.CartView
	call(t, app, http.MethodGet, "/api/v1/cart", token, nil, &cart)
	require.Len(t, cart.Items, 1)
	assert.False(t, cart.Items[0].Available)

	status = call(t, app, http.MethodPatch, "/api/v1/cart/items", token, map[string]interface{}{
		"product_id": wallet.ID, "quantity": 0,
	}, &cart)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart.Items)
}

func TestCustomerCancelRestocks(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")
	token := registerCustomer(t, app, "ayesha")
	wallet := createProduct(t, app, adminToken, "Bifold Wallet", 1000, 5)

	call(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{"product_id": wallet.ID, "quantity": 2}, nil)
	var placed services.OrderResult
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/v1/orders", token, karachiAddress, &placed))

	var cancelled services.OrderResult
	status := call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", placed.Order.ID), token,
		map[string]string{"reason": "ordered the wrong color"}, &cancelled)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusCancelled, cancelled.Order.Status)
	assert.Equal(t, "ordered the wrong color", cancelled.Order.CancelReason)

	var product models.Product
	call(t, app, http.MethodGet, "/api/v1/products/"+wallet.ID, "", nil, &product)
	assert.Equal(t, 5, product.Stock)
}

func TestShippingEndpoints(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "adminpassword")

	var fee map[string]interface{}
	status := call(t, app, http.MethodGet, "/api/v1/shipping/fee?city=Karachi&subtotal=1000", "", nil, &fee)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "300", fee["fee"])
	assert.Equal(t, false, fee["free_shipping"])

	call(t, app, http.MethodGet, "/api/v1/shipping/fee?city=Karachi&subtotal=6000", "", nil, &fee)
	assert.Equal(t, "0", fee["fee"])
	assert.Equal(t, true, fee["free_shipping"])

	call(t, app, http.MethodGet, "/api/v1/shipping/fee?city=Quetta", "", nil, &fee)
	assert.Equal(t, "250", fee["fee"])

	status = call(t, app, http.MethodGet, "/api/v1/shipping/fee?subtotal=abc", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, app, http.MethodPut, "/api/v1/admin/shipping/rates", adminToken, map[string]interface{}{
		"region": "Quetta", "fee": 450,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	call(t, app, http.MethodGet, "/api/v1/shipping/fee?city=Quetta", "", nil, &fee)
	assert.Equal(t, "450", fee["fee"])

	var rates []models.ShippingRate
	status = call(t, app, http.MethodGet, "/api/v1/admin/shipping/rates", adminToken, nil, &rates)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, rates, 2)
}
