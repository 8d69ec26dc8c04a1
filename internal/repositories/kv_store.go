package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a KeyValueStore when a key has no value.
var ErrNotFound = errors.New("key not found")

// KeyValueStore is the persistence port the cart store writes through. Values
// are opaque JSON documents; the last writer wins.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Deduper records one-shot markers, such as "purchase already reported".
type Deduper interface {
	// MarkOnce returns true the first time key is marked and false afterwards.
	MarkOnce(ctx context.Context, key string) (bool, error)
}
