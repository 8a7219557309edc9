package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/chatgate/provider"
)

// DocumentStore keeps JSON documents in the documents table. It
// implements provider.Store[C]. Expired rows read as missing and are
// removed on the next Load.
type DocumentStore[C any] struct {
	db  *DB
	now func() time.Time
}

// NewDocumentStore creates a store on db. Run migration.Up first.
func NewDocumentStore[C any](db *DB) *DocumentStore[C] {
	return &DocumentStore[C]{db: db, now: time.Now}
}

// Name returns "database".
func (s *DocumentStore[C]) Name() string { return "database" }

// IsAvailable pings the database.
func (s *DocumentStore[C]) IsAvailable(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// Load returns (nil, nil) when the key does not exist or has expired.
func (s *DocumentStore[C]) Load(ctx context.Context, key string) (*C, error) {
	var row Document
	res := s.db.WithContext(ctx).Where("doc_key = ?", key).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, FromDatabase(res.Error, "document")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	if row.expired(s.now()) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var val C
	if err := json.Unmarshal(row.Value, &val); err != nil {
		return nil, fmt.Errorf("database decode %q: %w", key, err)
	}
	return &val, nil
}

// Save upserts val as JSON. TTL of 0 means no expiration.
func (s *DocumentStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("database encode %q: %w", key, err)
	}
	now := s.now().UTC()
	row := Document{Key: key, Value: data, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		row.ExpiresAt = &exp
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc_value", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return FromDatabase(err, "document")
	}
	return nil
}

// Delete removes the row. Deleting a missing key is not an error.
func (s *DocumentStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("doc_key = ?", key).Delete(&Document{}).Error; err != nil {
		return FromDatabase(err, "document")
	}
	return nil
}

var _ provider.Store[any] = (*DocumentStore[any])(nil)
