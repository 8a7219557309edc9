package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/kbukum/chatgate/provider"
)

// DocumentStore keeps JSON documents as objects under prefix. It
// implements provider.Store[C]. Object stores have no expiry, so the TTL
// passed to Save is ignored.
type DocumentStore[C any] struct {
	storage Storage
	prefix  string
}

// NewDocumentStore creates a store writing to prefix/<key>.json.
func NewDocumentStore[C any](s Storage, prefix string) *DocumentStore[C] {
	if prefix == "" {
		prefix = "documents"
	}
	return &DocumentStore[C]{storage: s, prefix: prefix}
}

// Path returns the object path of key.
func (s *DocumentStore[C]) Path(key string) string {
	return path.Join(s.prefix, key+".json")
}

// Name returns "storage".
func (s *DocumentStore[C]) Name() string { return "storage" }

// IsAvailable probes the backend with an existence check.
func (s *DocumentStore[C]) IsAvailable(ctx context.Context) bool {
	_, err := s.storage.Exists(ctx, s.Path(".probe"))
	return err == nil
}

// Load returns (nil, nil) when the object does not exist.
func (s *DocumentStore[C]) Load(ctx context.Context, key string) (*C, error) {
	rc, err := s.storage.Download(ctx, s.Path(key))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage read %q: %w", key, err)
	}
	var val C
	if err := json.Unmarshal(data, &val); err != nil {
		return nil, fmt.Errorf("storage decode %q: %w", key, err)
	}
	return &val, nil
}

// Save uploads val as JSON.
func (s *DocumentStore[C]) Save(ctx context.Context, key string, val *C, _ time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("storage encode %q: %w", key, err)
	}
	return s.storage.Upload(ctx, s.Path(key), bytes.NewReader(data))
}

// Delete removes the object.
func (s *DocumentStore[C]) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, s.Path(key))
}

var _ provider.Store[any] = (*DocumentStore[any])(nil)
