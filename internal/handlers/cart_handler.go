package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for carts, bundles and coupons.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.SugaredLogger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: services.NewValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts/:cartId")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Post("/bundles/curated", h.HandleAddCuratedBundle)
	cartRoutes.Post("/bundles/custom", h.HandleAddCustomBundle)
	cartRoutes.Post("/coupon", h.HandleApplyCoupon)
	cartRoutes.Delete("/coupon", h.HandleRemoveCoupon)
}

func (h *CartHandler) respond(c *fiber.Ctx, view *models.CartView, err error, action string) error {
	if err != nil {
		if statusFor(err) >= fiber.StatusInternalServerError {
			h.logger.Errorf("Cart %s: could not %s: %v", c.Params("cartId"), action, err)
		}
		return respondError(c, err, "Could not "+action)
	}
	return c.JSON(view)
}

// HandleGetCart returns the cart with totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.UserContext(), c.Params("cartId"))
	return h.respond(c, view, err, "load cart")
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	view, err := h.service.ClearCart(c.UserContext(), c.Params("cartId"))
	return h.respond(c, view, err, "clear cart")
}

// HandleAddItem adds a catalog product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.AddItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.AddItem(c.UserContext(), c.Params("cartId"), req)
	return h.respond(c, view, err, "add item")
}

// HandleUpdateQuantity sets a line's quantity.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req struct {
		Quantity *int `json:"quantity" validate:"required"`
	}
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.UpdateQuantity(c.UserContext(), c.Params("cartId"), c.Params("productId"), *req.Quantity)
	return h.respond(c, view, err, "update quantity")
}

// HandleRemoveItem deletes a line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(c.UserContext(), c.Params("cartId"), c.Params("productId"))
	return h.respond(c, view, err, "remove item")
}

// HandleAddCuratedBundle adds a curated bundle line.
func (h *CartHandler) HandleAddCuratedBundle(c *fiber.Ctx) error {
	var req services.CuratedBundleRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.AddCuratedBundle(c.UserContext(), c.Params("cartId"), req)
	return h.respond(c, view, err, "add bundle")
}

// HandleAddCustomBundle adds a custom tee bundle line.
func (h *CartHandler) HandleAddCustomBundle(c *fiber.Ctx) error {
	var req services.CustomBundleRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.AddCustomBundle(c.UserContext(), c.Params("cartId"), req)
	return h.respond(c, view, err, "add bundle")
}

// HandleApplyCoupon applies a coupon code.
func (h *CartHandler) HandleApplyCoupon(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.ApplyCoupon(c.UserContext(), c.Params("cartId"), req.Code)
	if err != nil && statusFor(err) == fiber.StatusUnprocessableEntity {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return h.respond(c, view, err, "apply coupon")
}

// HandleRemoveCoupon drops the coupon.
func (h *CartHandler) HandleRemoveCoupon(c *fiber.Ctx) error {
	view, err := h.service.RemoveCoupon(c.UserContext(), c.Params("cartId"))
	return h.respond(c, view, err, "remove coupon")
}
