package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// ErrCheckoutSessionNotFound is returned for unknown session IDs.
var ErrCheckoutSessionNotFound = errors.New("checkout session not found")

// MockCheckoutRepository is an in-memory implementation of CheckoutRepository.
// Sessions are not persisted across restarts.
type MockCheckoutRepository struct {
	sessions map[string]models.CheckoutSession
	mu       sync.RWMutex
}

// NewMockCheckoutRepository creates a new instance of MockCheckoutRepository.
func NewMockCheckoutRepository() *MockCheckoutRepository {
	return &MockCheckoutRepository{
		sessions: make(map[string]models.CheckoutSession),
	}
}

// GetByID returns a session by its ID.
func (r *MockCheckoutRepository) GetByID(id string) (*models.CheckoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrCheckoutSessionNotFound)
	}
	return &session, nil
}

// Create stores a session.
func (r *MockCheckoutRepository) Create(session *models.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return nil
}

// UpdateStatus updates the status of a session.
func (r *MockCheckoutRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrCheckoutSessionNotFound)
	}
	session.Status = status
	session.UpdatedAt = time.Now()
	r.sessions[id] = session
	return nil
}
