package handlers

import (
	"context"
	"errors"

	"storefront/internal/bundle"
	"storefront/internal/cart"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var notFound *repositories.ProductNotFoundError
	var verr *services.ValidationError
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, bundle.ErrUnknownBundle),
		errors.Is(err, repositories.ErrCheckoutSessionNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, services.ErrInvalidCartID),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrIdentityRequired),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, bundle.ErrInvalidSize),
		errors.Is(err, bundle.ErrInvalidTeeCount),
		errors.Is(err, bundle.ErrUnknownVariant),
		errors.Is(err, bundle.ErrInvalidColor),
		errors.Is(err, bundle.ErrSlotOutOfRange):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCoupon),
		errors.Is(err, bundle.ErrIncompleteBundle):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrPaymentUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON body. Client errors carry the error text;
// server errors only carry message.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(status).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}
	if status >= fiber.StatusInternalServerError && status != fiber.StatusBadGateway {
		return c.Status(status).JSON(fiber.Map{"message": message})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// parseBody decodes and validates the request body into out. When ok is
// false the 400 response has already been written and err is its result.
func parseBody(c *fiber.Ctx, validate *validator.Validate, out interface{}) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  services.FieldErrors(err),
		})
	}
	return true, nil
}
