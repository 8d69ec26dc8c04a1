package models

// DiscountKind says how a coupon reduces the order.
type DiscountKind string

const (
	DiscountPercentage   DiscountKind = "percentage"
	DiscountFixed        DiscountKind = "fixed"
	DiscountFreeShipping DiscountKind = "free_shipping"
)

// Coupon is a discount code. Amount is a percent for DiscountPercentage,
// dollars for DiscountFixed and unused for DiscountFreeShipping.
type Coupon struct {
	Code        string       `json:"code"`
	Amount      float64      `json:"amount"`
	Kind        DiscountKind `json:"kind"`
	Description string       `json:"description,omitempty"`
}

// Totals are the derived order amounts for a cart. They are never stored.
type Totals struct {
	Subtotal                 float64 `json:"subtotal"`
	Discount                 float64 `json:"discount"`
	DiscountedSubtotal       float64 `json:"discountedSubtotal"`
	Shipping                 float64 `json:"shipping"`
	FreeShipping             bool    `json:"freeShipping"`
	PriorityShipping         bool    `json:"priorityShipping"`
	Tax                      float64 `json:"tax"`
	Total                    float64 `json:"total"`
	AmountToFreeShipping     float64 `json:"amountToFreeShipping"`
	AmountToPriorityShipping float64 `json:"amountToPriorityShipping"`
}
