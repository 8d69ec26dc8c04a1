package pricing_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func line(id string, price float64, qty int) models.CartItem {
	return models.CartItem{ProductID: id, Name: id, Price: price, Quantity: qty}
}

func TestCalculate_NoCouponAboveFreeShipping(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultRules())

	totals := calc.Calculate([]models.CartItem{line("tee", 20, 2)}, nil)

	assert.Equal(t, 40.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.True(t, totals.FreeShipping)
	assert.False(t, totals.PriorityShipping)
	assert.InDelta(t, 3.55, totals.Tax, 1e-9)
	assert.InDelta(t, 43.55, totals.Total, 1e-9)
}

func TestCalculate_FixedCouponBelowFreeShipping(t *testing.T) {
	calc := pricing.NewCalculator(pricing.Rules{})
	coupon := &models.Coupon{Code: "SAVE5", Kind: models.DiscountFixed, Amount: 5}

	totals := calc.Calculate([]models.CartItem{line("sticker", 15, 1)}, coupon)

	assert.Equal(t, 5.0, totals.Discount)
	assert.Equal(t, 10.0, totals.DiscountedSubtotal)
	assert.Equal(t, 8.99, totals.Shipping)
	assert.InDelta(t, 0.8875, totals.Tax, 1e-9)
	assert.InDelta(t, 19.8775, totals.Total, 1e-9)
	assert.Equal(t, 19.88, pricing.Round2(totals.Total))
}

func TestCalculate_ShippingThreshold(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultRules())

	below := calc.Calculate([]models.CartItem{line("a", 19.99, 1)}, nil)
	assert.Equal(t, 8.99, below.Shipping)
	assert.False(t, below.FreeShipping)
	assert.InDelta(t, 0.01, below.AmountToFreeShipping, 1e-9)

	at := calc.Calculate([]models.CartItem{line("a", 20, 1)}, nil)
	assert.Equal(t, 0.0, at.Shipping)
	assert.Equal(t, 0.0, at.AmountToFreeShipping)
}

func TestCalculate_PriorityShippingIsLabelOnly(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultRules())

	totals := calc.Calculate([]models.CartItem{line("hoodie", 62.5, 2)}, nil)

	assert.True(t, totals.PriorityShipping)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.InDelta(t, 125+125*0.08875, totals.Total, 1e-9)
}

func TestCalculate_FreeShippingCoupon(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultRules())
	coupon := &models.Coupon{Code: "FREESHIP", Kind: models.DiscountFreeShipping}

	totals := calc.Calculate([]models.CartItem{line("sticker", 4, 1)}, coupon)

	assert.Equal(t, 0.0, totals.Shipping)
	assert.True(t, totals.FreeShipping)
	assert.Equal(t, 0.0, totals.Discount)
	assert.InDelta(t, 4*1.08875, totals.Total, 1e-9)
}

func TestCalculate_PercentageCoupon(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultRules())
	coupon := &models.Coupon{Code: "SAVE20", Kind: models.DiscountPercentage, Amount: 20}

	totals := calc.Calculate([]models.CartItem{line("tee", 25, 2)}, coupon)

	assert.InDelta(t, 10.0, totals.Discount, 1e-9)
	assert.InDelta(t, 40.0*0.08875, totals.Tax, 1e-9)
	// Shipping tier is decided on the pre-discount subtotal.
	assert.Equal(t, 0.0, totals.Shipping)
}

func TestDiscount_NeverExceedsSubtotal(t *testing.T) {
	cases := []struct {
		name     string
		subtotal float64
		coupon   *models.Coupon
		want     float64
	}{
		{"nil coupon", 50, nil, 0},
		{"fixed below subtotal", 50, &models.Coupon{Kind: models.DiscountFixed, Amount: 15}, 15},
		{"fixed above subtotal", 10, &models.Coupon{Kind: models.DiscountFixed, Amount: 15}, 10},
		{"percent", 80, &models.Coupon{Kind: models.DiscountPercentage, Amount: 10}, 8},
		{"percent over 100 clamps", 80, &models.Coupon{Kind: models.DiscountPercentage, Amount: 150}, 80},
		{"free shipping", 80, &models.Coupon{Kind: models.DiscountFreeShipping}, 0},
		{"empty cart", 0, &models.Coupon{Kind: models.DiscountFixed, Amount: 5}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.Discount(tc.subtotal, tc.coupon)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.LessOrEqual(t, got, tc.subtotal)
		})
	}
}

func TestSubtotal_RemovingLineRemovesContribution(t *testing.T) {
	items := []models.CartItem{line("a", 12.5, 2), line("b", 3, 3)}
	assert.Equal(t, 34.0, pricing.Subtotal(items))
	assert.Equal(t, 9.0, pricing.Subtotal(items[1:]))
}

func TestCalculate_EmptyCart(t *testing.T) {
	totals := pricing.NewCalculator(pricing.DefaultRules()).Calculate(nil, nil)
	assert.Equal(t, models.Totals{AmountToFreeShipping: 20, AmountToPriorityShipping: 125}, totals)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1988), pricing.ToCents(19.8775))
	assert.Equal(t, int64(899), pricing.ToCents(8.99))
}

func TestAllocate(t *testing.T) {
	cases := []struct {
		name    string
		total   int64
		weights []int64
		want    []int64
	}{
		{"proportional", 4000, []int64{5000, 2500, 1500}, []int64{2222, 1111, 667}},
		{"even split", 1000, []int64{1, 1, 1}, []int64{334, 333, 333}},
		{"single line", 1000, []int64{1500}, []int64{1000}},
		{"nothing to split", 0, []int64{2500, 2500}, []int64{0, 0}},
		{"zero weights split evenly", 3, []int64{0, 0}, []int64{2, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.Allocate(tc.total, tc.weights)
			assert.Equal(t, tc.want, got)
			var sum int64
			for _, p := range got {
				sum += p
			}
			assert.Equal(t, tc.total, sum)
		})
	}
}
