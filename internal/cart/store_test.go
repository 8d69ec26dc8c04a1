package cart_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tee(qty int) models.CartItem {
	return models.CartItem{ProductID: "tee-classic", Name: "Classic Tee", Price: 25, Quantity: qty, Size: "M"}
}

func newLoadedStore(t *testing.T, kv repositories.KeyValueStore) *cart.Store {
	t.Helper()
	s := cart.NewStore("c1", kv, nil)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestStore_AddMergesByProductID(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewMemoryKeyValueStore()
	s := newLoadedStore(t, kv)

	require.NoError(t, s.Add(ctx, tee(1)))
	require.NoError(t, s.Add(ctx, tee(2)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, s.Count())

	count, err := kv.Get(ctx, cart.CountKey("c1"))
	require.NoError(t, err)
	assert.Equal(t, "3", string(count))
}

func TestStore_AddDefaultsQuantityAndValidatesPresence(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, repositories.NewMemoryKeyValueStore())

	require.NoError(t, s.Add(ctx, tee(0)))
	assert.Equal(t, 1, s.Count())

	err := s.Add(ctx, models.CartItem{Name: "No id", Price: 1, Quantity: 1})
	assert.ErrorIs(t, err, cart.ErrInvalidItem)
}

func TestStore_PersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewMemoryKeyValueStore()
	s := newLoadedStore(t, kv)
	require.NoError(t, s.Add(ctx, tee(2)))
	require.NoError(t, s.ApplyCoupon(ctx, models.Coupon{Code: "SAVE5", Kind: models.DiscountFixed, Amount: 5}))

	reloaded := newLoadedStore(t, kv)
	assert.Equal(t, s.Items(), reloaded.Items())
	require.NotNil(t, reloaded.Coupon())
	assert.Equal(t, "SAVE5", reloaded.Coupon().Code)
}

func TestStore_RemoveAndUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, repositories.NewMemoryKeyValueStore())
	require.NoError(t, s.Add(ctx, tee(1)))
	require.NoError(t, s.Add(ctx, models.CartItem{ProductID: "cap", Name: "Cap", Price: 18, Quantity: 1}))

	require.NoError(t, s.UpdateQuantity(ctx, "tee-classic", 4))
	assert.Equal(t, 5, s.Count())
	assert.Equal(t, "tee-classic", s.Items()[0].ProductID, "update keeps line position")

	require.NoError(t, s.UpdateQuantity(ctx, "cap", 0))
	assert.Len(t, s.Items(), 1)

	err := s.UpdateQuantity(ctx, "missing", 2)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	require.NoError(t, s.Remove(ctx, "tee-classic"))
	assert.Empty(t, s.Items())
	assert.NoError(t, s.Remove(ctx, "tee-classic"))
}

func TestStore_ClearDeletesPersistedState(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewMemoryKeyValueStore()
	s := newLoadedStore(t, kv)
	require.NoError(t, s.Add(ctx, tee(1)))
	require.NoError(t, s.ApplyCoupon(ctx, models.Coupon{Code: "FREESHIP", Kind: models.DiscountFreeShipping}))

	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Items())
	assert.Nil(t, s.Coupon())
	for _, key := range []string{cart.ItemsKey("c1"), cart.CountKey("c1"), cart.CouponKey("c1")} {
		_, err := kv.Get(ctx, key)
		assert.ErrorIs(t, err, repositories.ErrNotFound, key)
	}
}

func TestStore_CorruptedDataResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := repositories.NewMemoryKeyValueStore()
	require.NoError(t, kv.Set(ctx, cart.ItemsKey("c1"), []byte("{not json")))
	require.NoError(t, kv.Set(ctx, cart.CountKey("c1"), []byte("7")))
	require.NoError(t, kv.Set(ctx, cart.CouponKey("c1"), []byte("[]")))

	s := newLoadedStore(t, kv)

	assert.Empty(t, s.Items())
	assert.Nil(t, s.Coupon())
	_, err := kv.Get(ctx, cart.ItemsKey("c1"))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = kv.Get(ctx, cart.CountKey("c1"))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = kv.Get(ctx, cart.CouponKey("c1"))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestStore_ApplyCouponReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, repositories.NewMemoryKeyValueStore())

	require.NoError(t, s.ApplyCoupon(ctx, models.Coupon{Code: "SAVE5", Kind: models.DiscountFixed, Amount: 5}))
	require.NoError(t, s.ApplyCoupon(ctx, models.Coupon{Code: "SAVE20", Kind: models.DiscountPercentage, Amount: 20}))
	assert.Equal(t, "SAVE20", s.Coupon().Code)

	require.NoError(t, s.RemoveCoupon(ctx))
	assert.Nil(t, s.Coupon())
}

func TestStore_AddBundleMarksLine(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, repositories.NewMemoryKeyValueStore())

	err := s.AddBundle(ctx, models.CartItem{
		ProductID:   "bundle-starter-M",
		Name:        "Starter Pack",
		Price:       59.5,
		Quantity:    1,
		BundleID:    "starter",
		BundleItems: []string{"tee-classic", "cap"},
	})
	require.NoError(t, err)

	line := s.Items()[0]
	assert.True(t, line.IsBundle)
	assert.Equal(t, 2, line.BundleSize)
}

func TestStore_ObserversSeePersistedChanges(t *testing.T) {
	ctx := context.Background()
	s := newLoadedStore(t, repositories.NewMemoryKeyValueStore())

	var changes []cart.Change
	s.Subscribe(func(_ context.Context, cartID string, change cart.Change) {
		assert.Equal(t, "c1", cartID)
		changes = append(changes, change)
	})

	require.NoError(t, s.Add(ctx, tee(1)))
	require.NoError(t, s.Add(ctx, tee(1)))
	require.NoError(t, s.Remove(ctx, "tee-classic"))

	require.Len(t, changes, 3)
	assert.Equal(t, cart.ChangeAdd, changes[0].Kind)
	assert.Equal(t, 2, changes[1].Item.Quantity)
	assert.Equal(t, cart.ChangeRemove, changes[2].Kind)
	assert.Empty(t, changes[2].Items)
}

type failingStore struct {
	repositories.KeyValueStore
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStore_FailedSaveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := cart.NewStore("c1", failingStore{repositories.NewMemoryKeyValueStore()}, nil)
	require.NoError(t, s.Load(ctx))

	err := s.Add(ctx, tee(1))
	assert.Error(t, err)
	assert.Empty(t, s.Items())
}
