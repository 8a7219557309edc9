package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/chatgate/provider"
)

// TypedStore keeps JSON documents in redis string keys. It implements
// provider.Store[C].
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
}

// NewTypedStore creates a store on client. An empty keyPrefix uses the
// client's configured prefix.
func NewTypedStore[C any](client *Client, keyPrefix string) *TypedStore[C] {
	if keyPrefix == "" {
		keyPrefix = client.cfg.KeyPrefix
	}
	return &TypedStore[C]{client: client, keyPrefix: keyPrefix}
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Name returns "redis".
func (s *TypedStore[C]) Name() string { return "redis" }

// IsAvailable pings the server.
func (s *TypedStore[C]) IsAvailable(ctx context.Context) bool {
	return !s.client.isClosed() && s.client.Ping(ctx) == nil
}

// Load returns (nil, nil) when the key does not exist.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.rdb.Get(ctx, s.fullKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis load %q: %w", key, err)
	}

	var val C
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("redis decode %q: %w", key, err)
	}
	return &val, nil
}

// Save stores val as JSON. TTL of 0 means no expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := s.client.rdb.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

var _ provider.Store[any] = (*TypedStore[any])(nil)
