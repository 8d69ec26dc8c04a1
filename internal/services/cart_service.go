package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/analytics"
	"storefront/internal/bundle"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

var (
	// ErrInvalidCartID is returned for blank or oversized cart ids.
	ErrInvalidCartID = errors.New("invalid cart id")
	// ErrInvalidOption is returned when a size or color is not offered.
	ErrInvalidOption = errors.New("option not available")
)

// AddItemRequest is the body of POST /carts/:cartId/items. Price and name
// come from the catalog, never from the client.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CustomBundleRequest is the body of POST /carts/:cartId/bundles/custom.
type CustomBundleRequest struct {
	TeeCount int              `json:"teeCount" validate:"required"`
	Slots    []models.TeeSlot `json:"slots"`
}

// CuratedBundleRequest is the body of POST /carts/:cartId/bundles/curated.
type CuratedBundleRequest struct {
	BundleID string `json:"bundleId" validate:"required"`
	Size     string `json:"size"`
}

// CartServiceDeps groups CartService collaborators.
type CartServiceDeps struct {
	Storage    repositories.KeyValueStore
	Products   repositories.ProductRepository
	Coupons    *CouponService
	Catalog    *bundle.Catalog
	Calculator *pricing.Calculator
	Tracker    *analytics.Tracker
	Logger     *zap.SugaredLogger
}

// CartService loads a cart per request, applies one mutation under a
// per-cart lock and prices the result.
type CartService struct {
	storage  repositories.KeyValueStore
	products repositories.ProductRepository
	coupons  *CouponService
	catalog  *bundle.Catalog
	calc     *pricing.Calculator
	tracker  *analytics.Tracker
	logger   *zap.SugaredLogger
	locks    *keyedMutex
}

// NewCartService creates a new CartService.
func NewCartService(deps CartServiceDeps) *CartService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	calc := deps.Calculator
	if calc == nil {
		calc = pricing.NewCalculator(pricing.DefaultRules())
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = bundle.DefaultCatalog()
	}
	return &CartService{
		storage:  deps.Storage,
		products: deps.Products,
		coupons:  deps.Coupons,
		catalog:  catalog,
		calc:     calc,
		tracker:  deps.Tracker,
		logger:   logger,
		locks:    newKeyedMutex(),
	}
}

// Catalog exposes the bundle catalog.
func (s *CartService) Catalog() *bundle.Catalog {
	return s.catalog
}

// Totals prices items with the service's rules.
func (s *CartService) Totals(items []models.CartItem, coupon *models.Coupon) models.Totals {
	return s.calc.Calculate(items, coupon)
}

// GetCart returns the cart with its totals.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.CartView, error) {
	return s.withCart(ctx, cartID, nil)
}

// AddItem adds a catalog product to the cart, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, cartID string, req AddItemRequest) (*models.CartView, error) {
	product, err := s.products.GetByID(req.ProductID)
	if err != nil {
		return nil, err
	}
	size, ok := catalogOption(product.Sizes, req.Size)
	if !ok {
		return nil, fmt.Errorf("%s does not come in size %s: %w", product.Name, req.Size, ErrInvalidOption)
	}
	color, ok := catalogOption(product.Colors, req.Color)
	if !ok {
		return nil, fmt.Errorf("%s does not come in %s: %w", product.Name, req.Color, ErrInvalidOption)
	}

	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  req.Quantity,
		Size:      size,
		Color:     color,
	}
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.Add(ctx, item)
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*models.CartView, error) {
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.UpdateQuantity(ctx, productID, quantity)
	})
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*models.CartView, error) {
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.Remove(ctx, productID)
	})
}

// ClearCart empties the cart and its persisted state.
func (s *CartService) ClearCart(ctx context.Context, cartID string) (*models.CartView, error) {
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.Clear(ctx)
	})
}

// AddCuratedBundle prices a curated bundle and adds it as one line.
func (s *CartService) AddCuratedBundle(ctx context.Context, cartID string, req CuratedBundleRequest) (*models.CartView, error) {
	item, err := s.catalog.CuratedItem(s.products, req.BundleID, req.Size)
	if err != nil {
		return nil, err
	}
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.AddBundle(ctx, item)
	})
}

// AddCustomBundle assembles a custom tee bundle. Every slot must be filled
// and sized; otherwise bundle.ErrIncompleteBundle is returned.
func (s *CartService) AddCustomBundle(ctx context.Context, cartID string, req CustomBundleRequest) (*models.CartView, error) {
	builder, err := s.catalog.NewBuilder(req.TeeCount)
	if err != nil {
		return nil, err
	}
	if len(req.Slots) > req.TeeCount {
		return nil, fmt.Errorf("%d slots for %d tees: %w", len(req.Slots), req.TeeCount, bundle.ErrSlotOutOfRange)
	}
	for i, slot := range req.Slots {
		if slot.VariantID == "" {
			continue
		}
		if err := builder.SetSlot(i, slot); err != nil {
			return nil, fmt.Errorf("slot %d: %w", i+1, err)
		}
	}
	item, err := builder.CartItem()
	if err != nil {
		return nil, err
	}
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.AddBundle(ctx, item)
	})
}

// ApplyCoupon validates code and makes it the cart's only coupon. An invalid
// code leaves the current coupon in place.
func (s *CartService) ApplyCoupon(ctx context.Context, cartID, code string) (*models.CartView, error) {
	coupon, err := s.coupons.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.ApplyCoupon(ctx, *coupon)
	})
}

// RemoveCoupon drops the cart's coupon.
func (s *CartService) RemoveCoupon(ctx context.Context, cartID string) (*models.CartView, error) {
	return s.withCart(ctx, cartID, func(store *cart.Store) error {
		return store.RemoveCoupon(ctx)
	})
}

// withCart loads the cart under its lock, applies mutate (when non-nil) and
// returns the priced view.
func (s *CartService) withCart(ctx context.Context, cartID string, mutate func(*cart.Store) error) (*models.CartView, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" || len(cartID) > 128 {
		return nil, ErrInvalidCartID
	}

	unlock := s.locks.Lock(cartID)
	defer unlock()

	store := cart.NewStore(cartID, s.storage, s.logger)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	if s.tracker != nil {
		store.Subscribe(s.tracker.CartObserver())
	}
	if mutate != nil {
		if err := mutate(store); err != nil {
			return nil, err
		}
	}

	items := store.Items()
	if items == nil {
		items = []models.CartItem{}
	}
	coupon := store.Coupon()
	return &models.CartView{
		CartID: cartID,
		Items:  items,
		Count:  store.Count(),
		Coupon: coupon,
		Totals: s.calc.Calculate(items, coupon),
	}, nil
}

// catalogOption matches want against options ignoring case and returns the
// catalog's spelling. A blank want matches as "".
func catalogOption(options []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	if want == "" {
		return "", true
	}
	for _, o := range options {
		if strings.EqualFold(o, want) {
			return o, true
		}
	}
	return "", false
}
