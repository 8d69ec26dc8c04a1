package repositories

import (
	"strings"

	"storefront/internal/models"
)

// CouponRepository looks up coupon codes.
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, bool)
}

// StaticCouponRepository serves a fixed in-memory table of codes.
type StaticCouponRepository struct {
	coupons map[string]models.Coupon
}

// DefaultCoupons is the storefront's promotional code table.
var DefaultCoupons = []models.Coupon{
	{Code: "WELCOME10", Kind: models.DiscountPercentage, Amount: 10, Description: "10% off your first order"},
	{Code: "SAVE20", Kind: models.DiscountPercentage, Amount: 20, Description: "20% off"},
	{Code: "SAVE5", Kind: models.DiscountFixed, Amount: 5, Description: "$5 off"},
	{Code: "TAKE15", Kind: models.DiscountFixed, Amount: 15, Description: "$15 off"},
	{Code: "FREESHIP", Kind: models.DiscountFreeShipping, Description: "Free shipping"},
}

// NewStaticCouponRepository builds a repository over coupons.
func NewStaticCouponRepository(coupons []models.Coupon) *StaticCouponRepository {
	table := make(map[string]models.Coupon, len(coupons))
	for _, c := range coupons {
		table[NormalizeCouponCode(c.Code)] = c
	}
	return &StaticCouponRepository{coupons: table}
}

// GetByCode matches code case-insensitively, ignoring surrounding space.
func (r *StaticCouponRepository) GetByCode(code string) (*models.Coupon, bool) {
	c, ok := r.coupons[NormalizeCouponCode(code)]
	if !ok {
		return nil, false
	}
	return &c, true
}

// NormalizeCouponCode trims and upper-cases a code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
