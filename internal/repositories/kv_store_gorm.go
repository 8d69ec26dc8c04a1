package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the row GORMKeyValueStore persists.
type KVEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;type:varchar(191)"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName pins the table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GORMKeyValueStore is a GORM implementation of KeyValueStore and Deduper.
type GORMKeyValueStore struct {
	db *gorm.DB
}

// NewGORMKeyValueStore creates a new instance of GORMKeyValueStore.
func NewGORMKeyValueStore(db *gorm.DB) *GORMKeyValueStore {
	return &GORMKeyValueStore{
		db: db,
	}
}

// Get retrieves the value stored under key.
func (s *GORMKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	if err := s.db.WithContext(ctx).First(&entry, "kv_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set upserts the value under key.
func (s *GORMKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (s *GORMKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&KVEntry{}, "kv_key IN ?", keys).Error; err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// MarkOnce inserts key unless it already exists.
func (s *GORMKeyValueStore) MarkOnce(ctx context.Context, key string) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&KVEntry{Key: key, Value: []byte("1"), UpdatedAt: time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark key %s: %w", key, res.Error)
	}
	return res.RowsAffected == 1, nil
}
