// Package cart holds the state of a single shopping cart and writes every
// change through a key/value persistence port.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

var (
	// ErrItemNotFound is returned when a line id is not in the cart.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrInvalidItem is returned when a line is missing its id or name.
	ErrInvalidItem = errors.New("cart item requires a product id and name")
)

// ItemsKey is the storage key of a cart's lines.
func ItemsKey(cartID string) string { return "cart:" + cartID }

// CountKey is the storage key of a cart's cached item count.
func CountKey(cartID string) string { return "cartCount:" + cartID }

// CouponKey is the storage key of a cart's active coupon.
func CouponKey(cartID string) string { return "cartCoupon:" + cartID }

// ChangeKind names a cart mutation.
type ChangeKind string

const (
	ChangeAdd          ChangeKind = "add"
	ChangeAddBundle    ChangeKind = "add_bundle"
	ChangeRemove       ChangeKind = "remove"
	ChangeUpdate       ChangeKind = "update"
	ChangeClear        ChangeKind = "clear"
	ChangeCoupon       ChangeKind = "coupon"
	ChangeRemoveCoupon ChangeKind = "remove_coupon"
)

// Change describes a mutation after it has been persisted. Item is the line
// affected, if any; Items is the full cart afterwards.
type Change struct {
	Kind   ChangeKind
	Item   *models.CartItem
	Items  []models.CartItem
	Coupon *models.Coupon
}

// Observer is notified after each persisted change.
type Observer func(ctx context.Context, cartID string, change Change)

// Store is the state of one cart. It is not safe for concurrent use; callers
// serialize access per cart id.
type Store struct {
	id        string
	kv        repositories.KeyValueStore
	logger    *zap.SugaredLogger
	items     []models.CartItem
	coupon    *models.Coupon
	observers []Observer
}

// NewStore creates an empty store for cartID. Call Load to read persisted state.
func NewStore(cartID string, kv repositories.KeyValueStore, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		id:     cartID,
		kv:     kv,
		logger: logger,
	}
}

// ID returns the cart id.
func (s *Store) ID() string { return s.id }

// Subscribe registers an observer for subsequent changes.
func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Load reads the persisted cart. Missing data yields an empty cart; data that
// cannot be decoded is deleted and the cart starts empty.
func (s *Store) Load(ctx context.Context) error {
	s.items = nil
	s.coupon = nil

	raw, err := s.kv.Get(ctx, ItemsKey(s.id))
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to load cart %s: %w", s.id, err)
	default:
		var items []models.CartItem
		if err := json.Unmarshal(raw, &items); err != nil {
			s.logger.Warnf("Discarding corrupted cart %s: %v", s.id, err)
			if delErr := s.kv.Delete(ctx, ItemsKey(s.id), CountKey(s.id)); delErr != nil {
				return fmt.Errorf("failed to clear corrupted cart %s: %w", s.id, delErr)
			}
		} else {
			s.items = items
		}
	}

	raw, err = s.kv.Get(ctx, CouponKey(s.id))
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to load coupon for cart %s: %w", s.id, err)
	default:
		var coupon models.Coupon
		if err := json.Unmarshal(raw, &coupon); err != nil || coupon.Code == "" {
			s.logger.Warnf("Discarding corrupted coupon for cart %s", s.id)
			if delErr := s.kv.Delete(ctx, CouponKey(s.id)); delErr != nil {
				return fmt.Errorf("failed to clear corrupted coupon %s: %w", s.id, delErr)
			}
		} else {
			s.coupon = &coupon
		}
	}
	return nil
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []models.CartItem {
	return cloneItems(s.items)
}

// Count is the total quantity across lines.
func (s *Store) Count() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Coupon returns the active coupon, or nil.
func (s *Store) Coupon() *models.Coupon {
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// Add merges item into the cart: an existing line with the same id has its
// quantity increased, otherwise the line is appended. A quantity below one
// counts as one.
func (s *Store) Add(ctx context.Context, item models.CartItem) error {
	return s.add(ctx, item, ChangeAdd)
}

// AddBundle adds a single synthetic line standing for several products.
func (s *Store) AddBundle(ctx context.Context, item models.CartItem) error {
	item.IsBundle = true
	if item.BundleSize == 0 {
		item.BundleSize = len(item.BundleItems)
	}
	return s.add(ctx, item, ChangeAddBundle)
}

func (s *Store) add(ctx context.Context, item models.CartItem, kind ChangeKind) error {
	if item.ProductID == "" || item.Name == "" {
		return ErrInvalidItem
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	next := cloneItems(s.items)
	idx := indexOf(next, item.ProductID)
	if idx >= 0 {
		next[idx].Quantity += item.Quantity
	} else {
		next = append(next, item)
		idx = len(next) - 1
	}

	if err := s.commit(ctx, next, s.coupon); err != nil {
		return err
	}
	line := next[idx]
	s.notify(ctx, Change{Kind: kind, Item: &line})
	return nil
}

// Remove deletes the line with id. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, id string) error {
	idx := indexOf(s.items, id)
	if idx < 0 {
		return nil
	}
	removed := s.items[idx]
	next := cloneItems(s.items)
	next = append(next[:idx], next[idx+1:]...)

	if err := s.commit(ctx, next, s.coupon); err != nil {
		return err
	}
	s.notify(ctx, Change{Kind: ChangeRemove, Item: &removed})
	return nil
}

// UpdateQuantity sets a line's quantity in place. A quantity of zero or less
// removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	idx := indexOf(s.items, id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", id, ErrItemNotFound)
	}
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}

	next := cloneItems(s.items)
	next[idx].Quantity = quantity
	if err := s.commit(ctx, next, s.coupon); err != nil {
		return err
	}
	line := next[idx]
	s.notify(ctx, Change{Kind: ChangeUpdate, Item: &line})
	return nil
}

// Clear empties the cart, drops the coupon and deletes the persisted entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, ItemsKey(s.id), CountKey(s.id), CouponKey(s.id)); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", s.id, err)
	}
	s.items = nil
	s.coupon = nil
	s.notify(ctx, Change{Kind: ChangeClear})
	return nil
}

// ApplyCoupon makes coupon the single active coupon, replacing any other.
func (s *Store) ApplyCoupon(ctx context.Context, coupon models.Coupon) error {
	if err := s.commit(ctx, s.items, &coupon); err != nil {
		return err
	}
	s.notify(ctx, Change{Kind: ChangeCoupon})
	return nil
}

// RemoveCoupon drops the active coupon.
func (s *Store) RemoveCoupon(ctx context.Context) error {
	if s.coupon == nil {
		return nil
	}
	if err := s.commit(ctx, s.items, nil); err != nil {
		return err
	}
	s.notify(ctx, Change{Kind: ChangeRemoveCoupon})
	return nil
}

func (s *Store) commit(ctx context.Context, items []models.CartItem, coupon *models.Coupon) error {
	if items == nil {
		items = []models.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", s.id, err)
	}
	if err := s.kv.Set(ctx, ItemsKey(s.id), raw); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", s.id, err)
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	if err := s.kv.Set(ctx, CountKey(s.id), []byte(strconv.Itoa(count))); err != nil {
		return fmt.Errorf("failed to save cart count %s: %w", s.id, err)
	}

	if coupon == nil {
		if err := s.kv.Delete(ctx, CouponKey(s.id)); err != nil {
			return fmt.Errorf("failed to remove coupon %s: %w", s.id, err)
		}
	} else {
		rawCoupon, err := json.Marshal(coupon)
		if err != nil {
			return fmt.Errorf("failed to encode coupon %s: %w", s.id, err)
		}
		if err := s.kv.Set(ctx, CouponKey(s.id), rawCoupon); err != nil {
			return fmt.Errorf("failed to save coupon %s: %w", s.id, err)
		}
	}

	s.items = items
	s.coupon = coupon
	return nil
}

func (s *Store) notify(ctx context.Context, change Change) {
	if len(s.observers) == 0 {
		return
	}
	change.Items = s.Items()
	change.Coupon = s.Coupon()
	for _, o := range s.observers {
		o(ctx, s.id, change)
	}
}

func indexOf(items []models.CartItem, id string) int {
	for i, item := range items {
		if item.ProductID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return nil
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
