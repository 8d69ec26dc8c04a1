package middleware

import (
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CustomerKey is the fiber.Ctx locals key holding the signed-in *models.Customer.
const CustomerKey = "customer"

// OptionalIdentity reads a bearer token from the identity provider when one
// is sent. Requests without a token continue as guests; requests with a bad
// token are rejected.
func OptionalIdentity(identity *services.IdentityService, logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		customer, err := identity.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Infof("Identity token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(CustomerKey, customer)
		return c.Next()
	}
}

// Customer returns the signed-in customer, or nil for guests.
func Customer(c *fiber.Ctx) *models.Customer {
	customer, _ := c.Locals(CustomerKey).(*models.Customer)
	return customer
}
