package models

import "time"

// Address is a US shipping address.
type Address struct {
	Line1 string `json:"line1" validate:"required"`
	Line2 string `json:"line2"`
	City  string `json:"city" validate:"required"`
	State string `json:"state" validate:"required,us_state"`
	Zip   string `json:"zip" validate:"required,us_zip"`
}

// GuestInfo is the contact and shipping data a guest enters at checkout.
type GuestInfo struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Phone     string  `json:"phone" validate:"required,us_phone"`
	Address   Address `json:"address"`
}

// Customer is a signed-in shopper as asserted by the identity provider.
type Customer struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CheckoutRequest is the body of POST /checkout.
type CheckoutRequest struct {
	CartID string     `json:"cartId" validate:"required"`
	Guest  *GuestInfo `json:"guest,omitempty" validate:"-"`
}

// CheckoutSession statuses.
const (
	CheckoutPending   = "pending"
	CheckoutCompleted = "completed"
)

// CheckoutSession records a payment session handed to the payment processor.
// Sessions live in memory only.
type CheckoutSession struct {
	ID            string     `json:"id"`
	CartID        string     `json:"cartId"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	CustomerEmail string     `json:"customerEmail"`
	Guest         bool       `json:"guest"`
	CouponCode    string     `json:"couponCode,omitempty"`
	Items         []CartItem `json:"items"`
	Totals        Totals     `json:"totals"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
