package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kbukum/chatgate/provider"
)

// record wraps a stored value with its expiry.
type record struct {
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Value     json.RawMessage `json:"value"`
}

// TypedStore keeps JSON documents in one bucket. It implements
// provider.Store[C]. Expired records read as missing and are removed on
// the next Load.
type TypedStore[C any] struct {
	db     *DB
	bucket []byte
	now    func() time.Time
}

// NewTypedStore creates a store over bucket, which Open must have created.
func NewTypedStore[C any](db *DB, bucket string) *TypedStore[C] {
	if bucket == "" {
		bucket = "documents"
	}
	return &TypedStore[C]{db: db, bucket: []byte(bucket), now: time.Now}
}

// Name returns "bolt".
func (s *TypedStore[C]) Name() string { return "bolt" }

// IsAvailable reports whether the file is open.
func (s *TypedStore[C]) IsAvailable(_ context.Context) bool {
	return s.db.db.View(func(*bbolt.Tx) error { return nil }) == nil
}

// Load returns (nil, nil) when the key does not exist or has expired.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	var raw []byte
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		// bbolt values are only valid inside the transaction.
		raw = make([]byte, len(v))
		copy(raw, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt load %q: %w", key, err)
	}
	if raw == nil {
		return nil, nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("bolt decode %q: %w", key, err)
	}
	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		return nil, s.Delete(ctx, key)
	}
	var val C
	if err := json.Unmarshal(rec.Value, &val); err != nil {
		return nil, fmt.Errorf("bolt decode %q: %w", key, err)
	}
	return &val, nil
}

// Save stores val as JSON. TTL of 0 means no expiration.
func (s *TypedStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("bolt encode %q: %w", key, err)
	}
	rec := record{Value: data}
	if ttl > 0 {
		exp := s.now().Add(ttl)
		rec.ExpiresAt = &exp
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("bolt encode %q: %w", key, err)
	}

	err = s.db.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("bolt save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[C]) Delete(_ context.Context, key string) error {
	err := s.db.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete %q: %w", key, err)
	}
	return nil
}

var _ provider.Store[any] = (*TypedStore[any])(nil)
