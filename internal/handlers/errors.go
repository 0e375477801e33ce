package handlers

import (
	"errors"
	"fmt"
	"log"

	"kulit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var errorStatuses = []struct {
	target error
	status int
	code   string
}{
	{models.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{models.ErrOutOfStock, fiber.StatusConflict, "out_of_stock"},
	{models.ErrInsufficientStock, fiber.StatusConflict, "insufficient_stock"},
	{models.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition"},
	{models.ErrProductUnavailable, fiber.StatusConflict, "product_unavailable"},
	{models.ErrEmptyCart, fiber.StatusUnprocessableEntity, "empty_cart"},
	{models.ErrInvalidQuantity, fiber.StatusBadRequest, "invalid_quantity"},
	{models.ErrInvalidColor, fiber.StatusBadRequest, "invalid_color"},
	{models.ErrInvalidAmount, fiber.StatusBadRequest, "invalid_amount"},
	{models.ErrEmptyReason, fiber.StatusBadRequest, "missing_field"},
	{models.ErrInvalidPaymentMethod, fiber.StatusBadRequest, "invalid_payment_method"},
	{models.ErrForbidden, fiber.StatusForbidden, "forbidden"},
}

// respondError maps err onto the error taxonomy and writes the JSON error
// body. Unknown errors become 500s with the generic message.
func respondError(c *fiber.Ctx, err error, message string) error {
	for _, m := range errorStatuses {
		if !errors.Is(err, m.target) {
			continue
		}
		body := fiber.Map{
			"message": message,
			"error":   err.Error(),
			"code":    m.code,
		}
		var stockErr *models.StockError
		if errors.As(err, &stockErr) {
			body["product_id"] = stockErr.ProductID
			body["available"] = stockErr.Available
		}
		return c.Status(m.status).JSON(body)
	}

	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// bindAndValidate parses the request body into out and validates it. When
// ok is false the error response has already been written.
func bindAndValidate(c *fiber.Ctx, v *validator.Validate, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := v.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}
