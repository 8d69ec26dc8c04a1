package repositories

import (
	"storefront/internal/models"
)

// CheckoutRepository tracks payment sessions handed to the payment processor.
type CheckoutRepository interface {
	GetByID(id string) (*models.CheckoutSession, error)
	Create(session *models.CheckoutSession) error
	UpdateStatus(id string, status string) error
}
