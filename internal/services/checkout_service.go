package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/analytics"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrIdentityRequired is returned when neither a signed-in customer nor guest details are given.
	ErrIdentityRequired = errors.New("sign in or provide guest checkout details")
	// ErrPaymentUnavailable wraps payment gateway failures.
	ErrPaymentUnavailable = errors.New("payment session could not be created")
)

// CheckoutConfig holds the hosted payment page settings.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

// CheckoutResult is returned when a payment session is ready.
type CheckoutResult struct {
	SessionID string        `json:"sessionId"`
	URL       string        `json:"url"`
	Totals    models.Totals `json:"totals"`
}

// CheckoutService hands carts to the payment processor.
type CheckoutService struct {
	carts    *CartService
	gateway  payments.Gateway
	sessions repositories.CheckoutRepository
	tracker  *analytics.Tracker
	validate *validator.Validate
	cfg      CheckoutConfig
	logger   *zap.SugaredLogger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(carts *CartService, gateway payments.Gateway, sessions repositories.CheckoutRepository, tracker *analytics.Tracker, cfg CheckoutConfig, logger *zap.SugaredLogger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &CheckoutService{
		carts:    carts,
		gateway:  gateway,
		sessions: sessions,
		tracker:  tracker,
		validate: NewValidator(),
		cfg:      cfg,
		logger:   logger,
	}
}

// StartCheckout validates the buyer, prices the cart and creates a payment
// session. customer is nil for guests.
func (s *CheckoutService) StartCheckout(ctx context.Context, req models.CheckoutRequest, customer *models.Customer) (*CheckoutResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Fields: FieldErrors(err)}
	}

	email := ""
	guest := customer == nil
	if guest {
		if req.Guest == nil {
			return nil, ErrIdentityRequired
		}
		normalizeGuest(req.Guest)
		if err := s.validate.Struct(req.Guest); err != nil {
			fields := make(map[string]string)
			for k, v := range FieldErrors(err) {
				fields["guest."+k] = v
			}
			return nil, &ValidationError{Fields: fields}
		}
		email = req.Guest.Email
	} else {
		email = customer.Email
	}

	view, err := s.carts.GetCart(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}

	sessionReq := s.sessionRequest(view, email, guest)
	session, err := s.gateway.CreateCheckoutSession(ctx, sessionReq)
	if err != nil {
		s.logger.Errorf("Checkout session for cart %s failed: %v", view.CartID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	record := &models.CheckoutSession{
		ID:            session.ID,
		CartID:        view.CartID,
		URL:           session.URL,
		Status:        models.CheckoutPending,
		CustomerEmail: email,
		Guest:         guest,
		Items:         view.Items,
		Totals:        view.Totals,
	}
	if view.Coupon != nil {
		record.CouponCode = view.Coupon.Code
	}
	if err := s.sessions.Create(record); err != nil {
		return nil, fmt.Errorf("failed to record checkout session: %w", err)
	}

	s.tracker.Track(ctx, analytics.Event{
		Name:    analytics.InitiateCheckout,
		CartID:  view.CartID,
		OrderID: record.ID,
		Value:   pricing.Round2(view.Totals.Total),
		Items:   view.Items,
	})
	s.logger.Infof("Checkout session %s created for cart %s", record.ID, view.CartID)

	return &CheckoutResult{SessionID: record.ID, URL: record.URL, Totals: view.Totals}, nil
}

// CompleteCheckout marks a session paid, clears its cart and reports the
// purchase. Completing an already completed session changes nothing.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.CheckoutCompleted {
		return session, nil
	}

	if err := s.sessions.UpdateStatus(session.ID, models.CheckoutCompleted); err != nil {
		return nil, err
	}
	session.Status = models.CheckoutCompleted

	if _, err := s.carts.ClearCart(ctx, session.CartID); err != nil {
		s.logger.Errorf("Failed to clear cart %s after checkout %s: %v", session.CartID, session.ID, err)
	}

	s.tracker.TrackPurchase(ctx, analytics.Event{
		CartID:  session.CartID,
		OrderID: session.ID,
		Value:   pricing.Round2(session.Totals.Total),
		Items:   session.Items,
	})
	return session, nil
}

// sessionRequest turns the priced cart into payment lines whose cents add up
// to the displayed total. The coupon discount is spread across the product
// lines, so the processor never applies a discount of its own.
func (s *CheckoutService) sessionRequest(view *models.CartView, email string, guest bool) payments.SessionRequest {
	totals := view.Totals
	shippingCents := pricing.ToCents(totals.Shipping)
	taxCents := pricing.ToCents(totals.Tax)
	productCents := pricing.ToCents(totals.Total) - shippingCents - taxCents
	if productCents < 0 {
		productCents = 0
	}

	lines := make([]models.CartItem, 0, len(view.Items))
	weights := make([]int64, 0, len(view.Items))
	for _, item := range view.Items {
		if item.Quantity <= 0 {
			continue
		}
		lines = append(lines, item)
		weights = append(weights, pricing.ToCents(item.Price)*int64(item.Quantity))
	}
	amounts := pricing.Allocate(productCents, weights)

	items := make([]payments.LineItem, 0, len(lines)+2)
	for i, item := range lines {
		line := payments.LineItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitAmount: amounts[i],
			Quantity:   1,
		}
		var details []string
		if amounts[i]%int64(item.Quantity) == 0 {
			line.UnitAmount = amounts[i] / int64(item.Quantity)
			line.Quantity = int64(item.Quantity)
		} else {
			details = append(details, "Qty "+strconv.Itoa(item.Quantity))
		}
		if item.Size != "" {
			details = append(details, "Size "+item.Size)
		}
		if item.Color != "" {
			details = append(details, item.Color)
		}
		if item.IsBundle && len(item.BundleItems) > 0 {
			details = append(details, strings.Join(item.BundleItems, ", "))
		}
		line.Description = strings.Join(details, " · ")
		items = append(items, line)
	}
	if shippingCents > 0 {
		items = append(items, payments.LineItem{Name: "Shipping", UnitAmount: shippingCents, Quantity: 1})
	}
	if taxCents > 0 {
		items = append(items, payments.LineItem{Name: "Sales tax", UnitAmount: taxCents, Quantity: 1})
	}

	req := payments.SessionRequest{
		Currency:      s.cfg.Currency,
		Items:         items,
		CustomerEmail: email,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
		Metadata: map[string]string{
			"cartId":           view.CartID,
			"guest":            strconv.FormatBool(guest),
			"priorityShipping": strconv.FormatBool(totals.PriorityShipping),
			"total":            strconv.FormatFloat(pricing.Round2(totals.Total), 'f', 2, 64),
		},
	}
	if view.Coupon != nil {
		req.Metadata["coupon"] = view.Coupon.Code
		req.Metadata["discount"] = strconv.FormatFloat(pricing.Round2(totals.Discount), 'f', 2, 64)
	}
	req.IdempotencyKey = idempotencyKey(view.CartID, req)
	return req
}

// idempotencyKey is stable for identical requests on the same cart, so a
// repeated checkout click reuses the processor's session.
func idempotencyKey(cartID string, req payments.SessionRequest) string {
	raw, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "checkout-" + cartID + "-" + hex.EncodeToString(sum[:16])
}

func normalizeGuest(g *models.GuestInfo) {
	g.Email = strings.ToLower(strings.TrimSpace(g.Email))
	g.FirstName = strings.TrimSpace(g.FirstName)
	g.LastName = strings.TrimSpace(g.LastName)
	g.Phone = strings.TrimSpace(g.Phone)
	g.Address.State = strings.ToUpper(strings.TrimSpace(g.Address.State))
	g.Address.Zip = strings.TrimSpace(g.Address.Zip)
}
