package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ErrInvalidCoupon is returned for codes that are not in the coupon table.
// Its text is shown to shoppers as-is.
var ErrInvalidCoupon = errors.New("Invalid coupon code")

// CouponService validates coupon codes.
type CouponService struct {
	repo  repositories.CouponRepository
	delay time.Duration
}

// NewCouponService creates a CouponService. delay simulates the round trip
// of a remote coupon check.
func NewCouponService(repo repositories.CouponRepository, delay time.Duration) *CouponService {
	return &CouponService{
		repo:  repo,
		delay: delay,
	}
}

// Validate resolves code to a coupon after the simulated check delay.
func (s *CouponService) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidCoupon
	}
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	coupon, ok := s.repo.GetByCode(code)
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return coupon, nil
}
