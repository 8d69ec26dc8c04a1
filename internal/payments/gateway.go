// Package payments hands checkout off to a hosted payment page.
package payments

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// LineItem is one priced line on the hosted payment page, in minor units.
type LineItem struct {
	ProductID   string
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// SessionRequest describes the payment session to create. Line amounts are
// final: discounts are already folded into them.
type SessionRequest struct {
	Currency       string
	Items          []LineItem
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

// Session is the processor's answer: an id and the page to redirect to.
type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted payment sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
}

// StubGateway fabricates sessions without calling out. It stands in for the
// processor when no API key is configured.
type StubGateway struct{}

var stubNamespace = uuid.MustParse("0d6f4b62-2f5e-5c1a-9a43-7be2a1c9e8d0")

// CreateCheckoutSession returns a session that redirects straight to the
// success URL. Like the real processor, a repeated idempotency key yields the
// same session.
func (StubGateway) CreateCheckoutSession(_ context.Context, req SessionRequest) (Session, error) {
	sid := uuid.New()
	if req.IdempotencyKey != "" {
		sid = uuid.NewSHA1(stubNamespace, []byte(req.IdempotencyKey))
	}
	id := "cs_stub_" + strings.ReplaceAll(sid.String(), "-", "")
	return Session{
		ID:  id,
		URL: strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
	}, nil
}
