package repositories_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/repositories"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type kvStore interface {
	repositories.KeyValueStore
	repositories.Deduper
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func exerciseKeyValueStore(t *testing.T, store kvStore) {
	ctx := context.Background()

	_, err := store.Get(ctx, "cart:missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, store.Set(ctx, "cart:a", []byte(`[{"productId":"p1"}]`)))
	require.NoError(t, store.Set(ctx, "cartCount:a", []byte("1")))
	got, err := store.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"p1"}]`, string(got))

	require.NoError(t, store.Set(ctx, "cart:a", []byte(`[]`)))
	got, err = store.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got), "last write wins")

	require.NoError(t, store.Delete(ctx, "cart:a", "cartCount:a", "cartCoupon:a"))
	_, err = store.Get(ctx, "cartCount:a")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	require.NoError(t, store.Delete(ctx))

	first, err := store.MarkOnce(ctx, "purchase:cs_1")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := store.MarkOnce(ctx, "purchase:cs_1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestMemoryKeyValueStore(t *testing.T) {
	exerciseKeyValueStore(t, repositories.NewMemoryKeyValueStore())
}

func TestMemoryKeyValueStore_CopiesValues(t *testing.T) {
	store := repositories.NewMemoryKeyValueStore()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryKeyValueStore_MarkOnceConcurrent(t *testing.T) {
	store := repositories.NewMemoryKeyValueStore()
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkOnce(context.Background(), "purchase:cs_1"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestGORMKeyValueStore(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, db.AutoMigrate(&repositories.KVEntry{}))
	exerciseKeyValueStore(t, repositories.NewGORMKeyValueStore(db))
}

// Needs a reachable server; set REDIS_ADDR to run it.
func TestRedisKeyValueStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	prefix := fmt.Sprintf("storefront-test-%d:", time.Now().UnixNano())
	exerciseKeyValueStore(t, repositories.NewRedisKeyValueStore(client, prefix, time.Minute))
}
