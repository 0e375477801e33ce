package middleware

import (
	"log"
	"strings"

	"kulit/internal/models"
	"kulit/internal/services"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(claimsKey, claims)
		c.Locals("user_id", claims.UserID)
		c.Locals("role", string(claims.Role))
		return c.Next()
	}
}

// AdminOnly rejects requests whose token does not carry the admin role.
// It must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || !claims.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
				"error":   models.ErrForbidden.Error(),
			})
		}
		return c.Next()
	}
}

// Claims returns the identity stored by AuthRequired, or nil.
func Claims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(claimsKey).(*services.Claims)
	return claims
}

// UserID returns the authenticated user ID, or "".
func UserID(c *fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
