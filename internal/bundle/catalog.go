// Package bundle builds priced cart lines from curated bundles and from the
// custom tee builder.
package bundle

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/models"
	"storefront/internal/pricing"
)

var (
	ErrUnknownBundle    = errors.New("unknown bundle")
	ErrInvalidSize      = errors.New("size not available")
	ErrInvalidTeeCount  = errors.New("tee count must be 2, 3 or 4")
	ErrUnknownVariant   = errors.New("unknown tee variant")
	ErrInvalidColor     = errors.New("color not available")
	ErrSlotOutOfRange   = errors.New("slot out of range")
	ErrIncompleteBundle = errors.New("every tee needs a size before the bundle can be added")
)

// ProductLookup resolves catalog products. repositories.ProductRepository satisfies it.
type ProductLookup interface {
	GetByID(id string) (*models.Product, error)
}

// DefaultTeePrices is the custom bundle price by number of tees.
var DefaultTeePrices = map[int]float64{2: 50, 3: 70, 4: 88}

// DefaultCuratedBundles are the bundles merchandised on the storefront.
var DefaultCuratedBundles = []models.CuratedBundle{
	{
		ID:              "starter-pack",
		Name:            "Starter Pack",
		Description:     "Two classic tees and a logo cap",
		ProductIDs:      []string{"tee-classic-black", "tee-classic-white", "cap-logo"},
		DiscountPercent: 15,
	},
	{
		ID:              "cold-weather",
		Name:            "Cold Weather Kit",
		Description:     "Heavyweight hoodie, beanie and crew socks",
		ProductIDs:      []string{"hoodie-heavyweight", "beanie-knit", "socks-crew"},
		DiscountPercent: 20,
	},
	{
		ID:              "everyday-duo",
		Name:            "Everyday Duo",
		Description:     "Long sleeve tee and a tote",
		ProductIDs:      []string{"tee-long-sleeve", "tote-canvas"},
		DiscountPercent: 10,
	},
}

var teeSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// DefaultTeeVariants are the garments offered in the custom builder.
var DefaultTeeVariants = []models.TeeVariant{
	{ID: "classic", Name: "Classic Tee", Colors: []string{"black", "white", "heather grey", "navy"}, Sizes: teeSizes},
	{ID: "heavyweight", Name: "Heavyweight Tee", Colors: []string{"black", "bone", "forest green"}, Sizes: teeSizes},
	{ID: "pocket", Name: "Pocket Tee", Colors: []string{"white", "sand", "navy"}, Sizes: teeSizes[1:]},
}

// Catalog holds curated bundles, builder variants and the builder price table.
type Catalog struct {
	bundles   []models.CuratedBundle
	variants  []models.TeeVariant
	teePrices map[int]float64
}

// NewCatalog builds a catalog. A nil price table uses DefaultTeePrices.
func NewCatalog(bundles []models.CuratedBundle, variants []models.TeeVariant, teePrices map[int]float64) *Catalog {
	if teePrices == nil {
		teePrices = DefaultTeePrices
	}
	return &Catalog{bundles: bundles, variants: variants, teePrices: teePrices}
}

// DefaultCatalog is the storefront's bundle catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultCuratedBundles, DefaultTeeVariants, DefaultTeePrices)
}

// Bundles lists curated bundles.
func (c *Catalog) Bundles() []models.CuratedBundle {
	return append([]models.CuratedBundle(nil), c.bundles...)
}

// Variants lists builder variants.
func (c *Catalog) Variants() []models.TeeVariant {
	return append([]models.TeeVariant(nil), c.variants...)
}

// TeeCounts lists the supported custom bundle sizes in ascending order.
func (c *Catalog) TeeCounts() []int {
	counts := make([]int, 0, len(c.teePrices))
	for n := range c.teePrices {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	return counts
}

// TeePrice returns the fixed price of a custom bundle with count tees.
func (c *Catalog) TeePrice(count int) (float64, bool) {
	p, ok := c.teePrices[count]
	return p, ok
}

// Bundle finds a curated bundle by id.
func (c *Catalog) Bundle(id string) (models.CuratedBundle, bool) {
	for _, b := range c.bundles {
		if b.ID == id {
			return b, true
		}
	}
	return models.CuratedBundle{}, false
}

func (c *Catalog) variant(id string) (models.TeeVariant, bool) {
	for _, v := range c.variants {
		if v.ID == id {
			return v, true
		}
	}
	return models.TeeVariant{}, false
}

// CuratedItem prices a curated bundle as one cart line. size, when set, is
// applied to every sized member and must be offered by each of them. The
// price is the members' sum less the bundle's discount percent.
func (c *Catalog) CuratedItem(products ProductLookup, bundleID, size string) (models.CartItem, error) {
	b, ok := c.Bundle(bundleID)
	if !ok {
		return models.CartItem{}, fmt.Errorf("%s: %w", bundleID, ErrUnknownBundle)
	}
	size = strings.ToUpper(strings.TrimSpace(size))

	var sum float64
	image := b.Image
	for _, id := range b.ProductIDs {
		p, err := products.GetByID(id)
		if err != nil {
			return models.CartItem{}, fmt.Errorf("bundle %s member %s: %w", b.ID, id, err)
		}
		if size != "" && p.Sized() && !p.HasSize(size) {
			return models.CartItem{}, fmt.Errorf("%s in size %s: %w", p.Name, size, ErrInvalidSize)
		}
		if image == "" {
			image = p.Image
		}
		sum += p.Price
	}

	lineID := "bundle-" + b.ID
	name := b.Name
	if size != "" {
		lineID += "-" + size
		name += " (" + size + ")"
	}

	return models.CartItem{
		ProductID:   lineID,
		Name:        name,
		Price:       pricing.Round2(sum * (1 - b.DiscountPercent/100)),
		Image:       image,
		Quantity:    1,
		Size:        size,
		IsBundle:    true,
		BundleID:    b.ID,
		BundleItems: append([]string(nil), b.ProductIDs...),
		BundleSize:  len(b.ProductIDs),
	}, nil
}
