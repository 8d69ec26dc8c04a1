package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler hands carts to the payment processor.
type CheckoutHandler struct {
	service *services.CheckoutService
	logger  *zap.SugaredLogger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, logger *zap.SugaredLogger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/", h.HandleStartCheckout)
	checkoutRoutes.Post("/:sessionId/complete", h.HandleCompleteCheckout)
}

// HandleStartCheckout creates a payment session and returns its redirect URL.
func (h *CheckoutHandler) HandleStartCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.service.StartCheckout(c.UserContext(), req, middleware.Customer(c))
	if err != nil {
		if statusFor(err) == fiber.StatusBadGateway {
			h.logger.Errorf("Checkout for cart %s failed: %v", req.CartID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "We couldn't reach the payment page. Please try again.",
			})
		}
		return respondError(c, err, "Checkout failed")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleCompleteCheckout is called from the payment success page.
func (h *CheckoutHandler) HandleCompleteCheckout(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	session, err := h.service.CompleteCheckout(c.UserContext(), sessionID)
	if err != nil {
		if statusFor(err) >= fiber.StatusInternalServerError {
			h.logger.Errorf("Completing checkout %s failed: %v", sessionID, err)
		}
		return respondError(c, err, "Could not complete checkout")
	}
	return c.JSON(session)
}
