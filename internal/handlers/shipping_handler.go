package handlers

import (
	"kulit/internal/models"
	"kulit/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ShippingHandler exposes fee lookups and the admin rate table.
type ShippingHandler struct {
	service  *services.ShippingService
	validate *validator.Validate
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(service *services.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public fee lookup.
func (h *ShippingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shipping/fee", h.HandleGetFee)
}

// RegisterAdminRoutes registers rate table management.
func (h *ShippingHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/shipping/rates", h.HandleGetRates)
	admin.Put("/shipping/rates", h.HandleSetRate)
}

// HandleGetFee resolves the fee for ?city=&state=&subtotal=.
func (h *ShippingHandler) HandleGetFee(c *fiber.Ctx) error {
	subtotal := decimal.Zero
	if raw := c.Query("subtotal"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid subtotal",
				"error":   err.Error(),
			})
		}
		subtotal = parsed
	}

	address := models.ShippingAddress{City: c.Query("city"), State: c.Query("state")}
	fee, err := h.service.FeeFor(address, subtotal)
	if err != nil {
		return respondError(c, err, "Could not resolve shipping fee")
	}
	cfg := h.service.Config()
	return c.JSON(fiber.Map{
		"fee":                     fee,
		"free_shipping":           h.service.IsFreeShipping(subtotal),
		"free_shipping_threshold": cfg.FreeShippingThreshold,
	})
}

// HandleGetRates lists the per-region fees.
func (h *ShippingHandler) HandleGetRates(c *fiber.Ctx) error {
	rates, err := h.service.Rates()
	if err != nil {
		return respondError(c, err, "Could not retrieve shipping rates")
	}
	return c.JSON(rates)
}

// RateRequest sets the fee of one region.
type RateRequest struct {
	Region string          `json:"region" validate:"required,max=100"`
	Fee    decimal.Decimal `json:"fee"`
}

// HandleSetRate creates or replaces a region's fee.
func (h *ShippingHandler) HandleSetRate(c *fiber.Ctx) error {
	var req RateRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	rate, err := h.service.SetRate(req.Region, req.Fee)
	if err != nil {
		return respondError(c, err, "Could not save shipping rate")
	}
	return c.JSON(rate)
}
