package provider

import (
	"context"
	"time"
)

// ContextStore persists typed documents under opaque keys. The chat
// store keeps its whole state as one document; backends live in their
// own packages (redis, database, bolt, storage) so a binary only links
// what it configures.
//
// TTL of 0 means no expiration. Backends that cannot expire keys say so.
type ContextStore[C any] interface {
	// Load retrieves state. Returns (nil, nil) if key doesn't exist.
	Load(ctx context.Context, key string) (*C, error)
	// Save persists state with optional TTL. TTL of 0 means no expiration.
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	// Delete removes state. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
