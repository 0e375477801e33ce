package handlers

import (
	"kulit/internal/middleware"
	"kulit/internal/models"
	"kulit/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer checkout and order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout/quote", h.HandleQuote)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers the back-office order routes.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	orderRoutes := admin.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleAdminGetOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// CheckoutRequest is the body of a quote or order placement.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"omitempty,max=16"`
}

// HandleQuote prices the cart at live prices including shipping.
func (h *OrderHandler) HandleQuote(c *fiber.Ctx) error {
	var req CheckoutRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	quote, err := h.service.Quote(middleware.UserID(c), req.ShippingAddress)
	if err != nil {
		return respondError(c, err, "Could not price checkout")
	}
	return c.JSON(quote)
}

// HandleCreateOrder places an order from the authenticated user's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CheckoutRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return respondError(c, err, "Order creation failed")
	}

	result, err := h.service.CreateOrder(c.UserContext(), middleware.UserID(c), req.ShippingAddress, method)
	if err != nil {
		return respondError(c, err, "Order creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleGetMyOrders lists the authenticated user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersForUser(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns one of the authenticated user's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderForUser(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// HandleCancelOrder cancels one of the user's own orders before it ships.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	var req CancelRequest
	if len(c.Body()) > 0 {
		if ok, err := bindAndValidate(c, h.validate, &req); !ok {
			return err
		}
	}
	result, err := h.service.CancelOrder(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Reason)
	if err != nil {
		return respondError(c, err, "Could not cancel order")
	}
	return c.JSON(result)
}

// HandleGetOrders lists all orders, optionally filtered by ?status=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var status models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseOrderStatus(raw)
		if err != nil {
			return respondError(c, err, "Could not retrieve orders")
		}
		status = parsed
	}
	orders, err := h.service.GetAllOrders(status)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleAdminGetOrder returns any order.
func (h *OrderHandler) HandleAdminGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// StatusUpdateRequest is the body of an admin status change.
type StatusUpdateRequest struct {
	Status         string `json:"status" validate:"required"`
	Carrier        string `json:"carrier" validate:"max=100"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
	Reason         string `json:"reason" validate:"max=500"`
}

// HandleUpdateOrderStatus moves an order through its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req StatusUpdateRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return respondError(c, err, "Order update failed")
	}

	var shipment *models.ShipmentInfo
	if target == models.StatusShipped {
		shipment = &models.ShipmentInfo{Carrier: req.Carrier, TrackingNumber: req.TrackingNumber}
	}
	result, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), target, shipment, req.Reason)
	if err != nil {
		return respondError(c, err, "Order update failed")
	}
	return c.JSON(result)
}
