package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps one JSON file per key in a directory. Each file has a
// sibling ".lock" file guarded with flock, so several chatctl processes
// can share a directory: readers take a shared lock, writers an exclusive
// one, and a write replaces the file atomically.
//
// FileStore cannot expire keys; ttl is ignored.
type FileStore[C any] struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore[C any](dir string) (*FileStore[C], error) {
	if dir == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore[C]{dir: dir}, nil
}

// Name returns "file".
func (s *FileStore[C]) Name() string { return "file" }

// IsAvailable reports whether the directory exists and is a directory.
func (s *FileStore[C]) IsAvailable(context.Context) bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Path returns the file holding key.
func (s *FileStore[C]) Path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore[C]) lock(ctx context.Context, key string, shared bool) (*flock.Flock, error) {
	lk := flock.New(s.Path(key) + ".lock")
	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = lk.TryRLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = lk.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("file store: lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("file store: lock %s: not acquired", key)
	}
	return lk, nil
}

// Load decodes the file for key, or returns (nil, nil) when there is none.
func (s *FileStore[C]) Load(ctx context.Context, key string) (*C, error) {
	lk, err := s.lock(ctx, key, true)
	if err != nil {
		return nil, err
	}
	defer lk.Unlock()

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", key, err)
	}

	var val C
	if err := json.Unmarshal(data, &val); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", key, err)
	}
	return &val, nil
}

// Save writes val as compact JSON through a temp file and a rename.
// Embedded raw JSON is kept byte for byte.
func (s *FileStore[C]) Save(ctx context.Context, key string, val *C, _ time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("file store: encode %s: %w", key, err)
	}

	lk, err := s.lock(ctx, key, false)
	if err != nil {
		return err
	}
	defer lk.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("file store: replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore[C]) Delete(ctx context.Context, key string) error {
	lk, err := s.lock(ctx, key, false)
	if err != nil {
		return err
	}
	defer lk.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store: delete %s: %w", key, err)
	}
	return nil
}

var _ Store[any] = (*FileStore[any])(nil)
