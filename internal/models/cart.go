package models

// CartItem is a single line in a shopping cart. ProductID is the line's
// identity; bundle lines carry a synthesized id instead of a catalog id.
type CartItem struct {
	ProductID   string   `json:"productId" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Image       string   `json:"image,omitempty"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
	Size        string   `json:"size,omitempty"`
	Color       string   `json:"color,omitempty"`
	IsBundle    bool     `json:"isBundle,omitempty"`
	BundleID    string   `json:"bundleId,omitempty"`
	BundleItems []string `json:"bundleItems,omitempty"`
	BundleSize  int      `json:"bundleSize,omitempty"`
}

// LineTotal is the unit price times the quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartView is what the cart endpoints return.
type CartView struct {
	CartID string     `json:"cartId"`
	Items  []CartItem `json:"items"`
	Count  int        `json:"count"`
	Coupon *Coupon    `json:"coupon,omitempty"`
	Totals Totals     `json:"totals"`
}
