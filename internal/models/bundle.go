package models

// CuratedBundle is a fixed set of catalog products sold together at a discount.
type CuratedBundle struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Image           string   `json:"image,omitempty"`
	ProductIDs      []string `json:"productIds"`
	DiscountPercent float64  `json:"discountPercent"`
}

// TeeVariant is a garment that can fill a slot in a custom tee bundle.
type TeeVariant struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Image  string   `json:"image,omitempty"`
	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`
}

// TeeSlot is one tee selection inside a custom bundle.
type TeeSlot struct {
	VariantID string `json:"variantId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}
