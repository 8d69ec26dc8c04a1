package handlers

import (
	"strconv"

	"storefront/internal/bundle"

	"github.com/gofiber/fiber/v2"
)

// BundleHandler serves the bundle catalog the builder sheet renders.
type BundleHandler struct {
	catalog *bundle.Catalog
}

// NewBundleHandler creates a new BundleHandler.
func NewBundleHandler(catalog *bundle.Catalog) *BundleHandler {
	return &BundleHandler{catalog: catalog}
}

// RegisterRoutes registers the bundle catalog routes.
func (h *BundleHandler) RegisterRoutes(router fiber.Router) {
	bundleRoutes := router.Group("/bundles")
	bundleRoutes.Get("/", h.HandleGetBundles)
	bundleRoutes.Get("/variants", h.HandleGetVariants)
}

// HandleGetBundles lists curated bundles.
func (h *BundleHandler) HandleGetBundles(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Bundles())
}

// HandleGetVariants lists custom builder garments and the tee-count price table.
func (h *BundleHandler) HandleGetVariants(c *fiber.Ctx) error {
	prices := make(fiber.Map)
	for _, n := range h.catalog.TeeCounts() {
		p, _ := h.catalog.TeePrice(n)
		prices[strconv.Itoa(n)] = p
	}
	return c.JSON(fiber.Map{
		"variants": h.catalog.Variants(),
		"prices":   prices,
	})
}
