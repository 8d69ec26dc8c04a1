// Package pricing derives order totals from cart lines and an optional coupon.
package pricing

import (
	"math"
	"sort"

	"storefront/internal/models"
)

// Rules holds the thresholds and rates the calculator applies.
type Rules struct {
	FreeShippingThreshold     float64
	PriorityShippingThreshold float64
	FlatShippingRate          float64
	TaxRate                   float64 // fraction, 0.08875 for 8.875%
}

// DefaultRules are the storefront's published shipping and NY tax rules.
func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold:     20,
		PriorityShippingThreshold: 125,
		FlatShippingRate:          8.99,
		TaxRate:                   0.08875,
	}
}

// Calculator computes totals with a fixed set of rules.
type Calculator struct {
	rules Rules
}

// NewCalculator returns a Calculator. Zero-valued rules fall back to DefaultRules.
func NewCalculator(rules Rules) *Calculator {
	if rules == (Rules{}) {
		rules = DefaultRules()
	}
	return &Calculator{rules: rules}
}

// Rules returns the rules the calculator was built with.
func (c *Calculator) Rules() Rules {
	return c.rules
}

// Subtotal is the sum of unit price times quantity over all lines.
func Subtotal(items []models.CartItem) float64 {
	var subtotal float64
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal += item.LineTotal()
	}
	return subtotal
}

// Discount returns the amount a coupon takes off subtotal. It never exceeds
// subtotal. Free-shipping coupons discount nothing here; they act on shipping.
func Discount(subtotal float64, coupon *models.Coupon) float64 {
	if coupon == nil || subtotal <= 0 {
		return 0
	}
	switch coupon.Kind {
	case models.DiscountPercentage:
		pct := math.Min(math.Max(coupon.Amount, 0), 100)
		return subtotal * pct / 100
	case models.DiscountFixed:
		return math.Min(math.Max(coupon.Amount, 0), subtotal)
	default:
		return 0
	}
}

// Calculate runs the pricing pipeline: subtotal, shipping tier, priority
// flag, coupon discount, tax on the discounted subtotal, then the total.
func (c *Calculator) Calculate(items []models.CartItem, coupon *models.Coupon) models.Totals {
	r := c.rules
	subtotal := Subtotal(items)

	shipping := r.FlatShippingRate
	freeShipping := subtotal >= r.FreeShippingThreshold
	if freeShipping {
		shipping = 0
	}
	// Nothing to ship.
	if subtotal == 0 {
		shipping = 0
	}

	priority := subtotal >= r.PriorityShippingThreshold

	discount := Discount(subtotal, coupon)
	if coupon != nil && coupon.Kind == models.DiscountFreeShipping {
		shipping = 0
		freeShipping = true
	}

	discounted := subtotal - discount
	tax := discounted * r.TaxRate

	return models.Totals{
		Subtotal:                 subtotal,
		Discount:                 discount,
		DiscountedSubtotal:       discounted,
		Shipping:                 shipping,
		FreeShipping:             freeShipping,
		PriorityShipping:         priority,
		Tax:                      tax,
		Total:                    discounted + shipping + tax,
		AmountToFreeShipping:     math.Max(r.FreeShippingThreshold-subtotal, 0),
		AmountToPriorityShipping: math.Max(r.PriorityShippingThreshold-subtotal, 0),
	}
}

// Round2 rounds a dollar amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToCents converts a dollar amount to integer minor units.
func ToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Allocate splits total minor units across lines in proportion to weights,
// handing leftover cents to the largest remainders. The parts always sum to
// total. Zero weights get an even share.
func Allocate(total int64, weights []int64) []int64 {
	parts := make([]int64, len(weights))
	if len(weights) == 0 || total <= 0 {
		return parts
	}

	var sum int64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		weights = make([]int64, len(parts))
		for i := range weights {
			weights[i] = 1
		}
		sum = int64(len(weights))
	}

	type remainder struct {
		idx  int
		frac int64
	}
	rems := make([]remainder, len(weights))
	var allocated int64
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		parts[i] = total * w / sum
		rems[i] = remainder{idx: i, frac: total * w % sum}
		allocated += parts[i]
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := int64(0); i < total-allocated; i++ {
		parts[rems[i%int64(len(rems))].idx]++
	}
	return parts
}
