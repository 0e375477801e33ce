package handlers

import (
	"kulit/internal/middleware"
	"kulit/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes. router must be authenticated.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items", h.HandleUpdateItem)
	cartRoutes.Delete("/items", h.HandleRemoveItem)
}

// CartItemRequest identifies a cart line and, for add and update, a quantity.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color" validate:"max=50"`
	Quantity  int    `json:"quantity"`
}

// HandleGetCart returns the cart with live stock and price annotations.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

// HandleAddItem adds a product in a color to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.AddItem(middleware.UserID(c), req.ProductID, req.Color, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	return c.JSON(cart)
}

// HandleUpdateItem changes the quantity of a line; zero removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.UpdateItem(middleware.UserID(c), req.ProductID, req.Color, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not update cart item")
	}
	return c.JSON(cart)
}

// HandleRemoveItem removes the line named by ?product_id=&color=. Removing
// an absent line succeeds.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	req := CartItemRequest{ProductID: c.Query("product_id"), Color: c.Query("color")}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	cart, err := h.service.RemoveItem(middleware.UserID(c), req.ProductID, req.Color)
	if err != nil {
		return respondError(c, err, "Could not remove cart item")
	}
	return c.JSON(cart)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(middleware.UserID(c)); err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
