package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is wrapped by Download when the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// FileInfo describes one stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is a flat object store addressed by slash-separated paths.
// Attachment blobs and, with the storage backend, chat documents live
// here.
type Storage interface {
	// Upload replaces the object at path with the reader's contents.
	Upload(ctx context.Context, path string, reader io.Reader) error
	// Download opens the object at path. The caller closes it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// List returns every object whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}
