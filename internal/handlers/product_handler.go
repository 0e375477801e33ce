package handlers

import (
	"fmt"

	"kulit/internal/models"
	"kulit/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler serves the storefront catalog and the admin product and
// stock endpoints.
type ProductHandler struct {
	service  *services.ProductService
	stock    *services.StockService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, stock *services.StockService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		stock:    stock,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers product management and stock ledger routes.
func (h *ProductHandler) RegisterAdminRoutes(admin fiber.Router) {
	productRoutes := admin.Group("/products")
	productRoutes.Get("/", h.HandleAdminGetProducts)
	productRoutes.Get("/low-stock", h.HandleLowStock)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/stock", h.HandleAdjustStock)
	productRoutes.Get("/:id/stock", h.HandleStockHistory)
}

// HandleGetProducts lists the products on sale.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(models.ProductActive)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID returns one product on sale.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	if product.Status != models.ProductActive {
		return respondError(c, fmt.Errorf("product with ID %s %w", product.ID, models.ErrNotFound), "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleAdminGetProducts lists every product, optionally filtered by ?status=.
func (h *ProductHandler) HandleAdminGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(models.ProductStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleLowStock lists active products at or below their threshold.
func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStockProducts()
	if err != nil {
		return respondError(c, err, "Could not retrieve low stock products")
	}
	return c.JSON(products)
}

// ProductRequest is the body for creating or updating a product.
type ProductRequest struct {
	Name           string               `json:"name" validate:"required,min=3,max=100"`
	Description    string               `json:"description" validate:"omitempty,max=2000"`
	Image          string               `json:"image" validate:"omitempty,max=500"`
	Price          decimal.Decimal      `json:"price"`
	Stock          int                  `json:"stock" validate:"gte=0"`
	StockThreshold int                  `json:"stock_threshold" validate:"gte=0"`
	Colors         []string             `json:"colors" validate:"dive,required,max=50"`
	Status         models.ProductStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
}

func (r ProductRequest) toProduct(id string) *models.Product {
	return &models.Product{
		ID:             id,
		Name:           r.Name,
		Description:    r.Description,
		Image:          r.Image,
		Price:          r.Price,
		Stock:          r.Stock,
		StockThreshold: r.StockThreshold,
		Colors:         r.Colors,
		Status:         r.Status,
	}
}

// HandleCreateProduct creates a product. Initial stock is booked in the ledger.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	product := req.toProduct("")
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates catalog fields. The stock field is ignored.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	product := req.toProduct(c.Params("id"))
	if err := h.service.UpdateProduct(product); err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}

// StockAdjustmentRequest is the body of a manual stock adjustment.
type StockAdjustmentRequest struct {
	Type     models.AdjustmentType `json:"type"`
	Quantity int                   `json:"quantity"`
	Reason   string                `json:"reason"`
}

// HandleAdjustStock applies an audited stock adjustment. Range and reason
// checks live in the ledger so the same taxonomy is returned everywhere.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	var req StockAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	id := c.Params("id")
	stock, err := h.stock.AdjustStock(c.UserContext(), id, req.Type, req.Quantity, req.Reason)
	if err != nil {
		return respondError(c, err, "Could not adjust stock")
	}
	return c.JSON(fiber.Map{
		"message":    fmt.Sprintf("Stock for product %s adjusted", id),
		"product_id": id,
		"stock":      stock,
	})
}

// HandleStockHistory returns the stock ledger of a product.
func (h *ProductHandler) HandleStockHistory(c *fiber.Ctx) error {
	history, err := h.stock.History(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve stock history")
	}
	if history == nil {
		history = []models.StockAdjustment{}
	}
	return c.JSON(history)
}
