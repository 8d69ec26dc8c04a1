// Package analytics reports storefront funnel events.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventName is a funnel step.
type EventName string

const (
	ViewContent      EventName = "view_content"
	AddToCart        EventName = "add_to_cart"
	InitiateCheckout EventName = "initiate_checkout"
	Purchase         EventName = "purchase"
)

// Event is the payload sent to the tracking pipeline.
type Event struct {
	ID         string            `json:"id"`
	Name       EventName         `json:"name"`
	CartID     string            `json:"cartId,omitempty"`
	OrderID    string            `json:"orderId,omitempty"`
	ProductID  string            `json:"productId,omitempty"`
	Value      float64           `json:"value"`
	Currency   string            `json:"currency"`
	Items      []models.CartItem `json:"items,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Tracker stamps events and hands them to a Publisher. Delivery failures are
// logged, never returned: tracking must not break shopping.
type Tracker struct {
	publisher Publisher
	deduper   repositories.Deduper
	currency  string
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewTracker creates a Tracker. deduper may be nil, in which case purchases
// are not deduplicated.
func NewTracker(publisher Publisher, deduper repositories.Deduper, currency string, logger *zap.SugaredLogger) *Tracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if currency == "" {
		currency = "USD"
	}
	return &Tracker{
		publisher: publisher,
		deduper:   deduper,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
	}
}

// Track sends event.
func (t *Tracker) Track(ctx context.Context, event Event) {
	if t == nil || t.publisher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Currency == "" {
		event.Currency = t.currency
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = t.now().UTC()
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.Warnf("Failed to publish %s event: %v", event.Name, err)
	}
}

// TrackPurchase sends a purchase event at most once per order.
func (t *Tracker) TrackPurchase(ctx context.Context, event Event) bool {
	if t == nil {
		return false
	}
	event.Name = Purchase
	if t.deduper != nil && event.OrderID != "" {
		first, err := t.deduper.MarkOnce(ctx, "purchase:"+event.OrderID)
		if err != nil {
			t.logger.Warnf("Purchase dedupe check failed for %s: %v", event.OrderID, err)
			return false
		}
		if !first {
			t.logger.Debugf("Purchase for %s already reported", event.OrderID)
			return false
		}
	}
	t.Track(ctx, event)
	return true
}

// CartObserver reports add-to-cart events for cart additions.
func (t *Tracker) CartObserver() cart.Observer {
	return func(ctx context.Context, cartID string, change cart.Change) {
		if change.Kind != cart.ChangeAdd && change.Kind != cart.ChangeAddBundle {
			return
		}
		if change.Item == nil {
			return
		}
		t.Track(ctx, Event{
			Name:      AddToCart,
			CartID:    cartID,
			ProductID: change.Item.ProductID,
			Value:     change.Item.Price,
			Items:     []models.CartItem{*change.Item},
		})
	}
}

// MessagePublisher is the transport AMQPPublisher writes to. *rabbitmq.Client satisfies it.
type MessagePublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// AMQPPublisher publishes events as JSON messages.
type AMQPPublisher struct {
	transport MessagePublisher
}

// NewAMQPPublisher wraps a message transport.
func NewAMQPPublisher(transport MessagePublisher) *AMQPPublisher {
	return &AMQPPublisher{transport: transport}
}

// Publish encodes and sends event.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Name, err)
	}
	return p.transport.Publish(ctx, string(event.Name), body)
}

// LogPublisher writes events to the log. It is used outside production.
type LogPublisher struct {
	logger *zap.SugaredLogger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.SugaredLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs event.
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debugw("analytics event",
		"name", event.Name,
		"cartId", event.CartID,
		"orderId", event.OrderID,
		"productId", event.ProductID,
		"value", event.Value,
	)
	return nil
}
