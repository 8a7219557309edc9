package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	apperrors "github.com/kbukum/chatgate/errors"
)

// Blobs stores attachment content under prefix/<id>/<name> and hands out
// the object path as the reference.
type Blobs struct {
	storage Storage
	prefix  string
	maxSize int64
}

// NewBlobs creates a blob area. maxSize <= 0 uses DefaultMaxFileSize.
func NewBlobs(s Storage, prefix string, maxSize int64) *Blobs {
	if prefix == "" {
		prefix = "attachments"
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Blobs{storage: s, prefix: prefix, maxSize: maxSize}
}

// Put stores r and returns its reference and size. Content larger than
// the limit is rejected and nothing is kept.
func (b *Blobs) Put(ctx context.Context, id, name string, r io.Reader) (string, int64, error) {
	ref := path.Join(b.prefix, id, path.Base("/"+name))
	counted := &countingReader{r: io.LimitReader(r, b.maxSize+1)}
	if err := b.storage.Upload(ctx, ref, counted); err != nil {
		return "", 0, err
	}
	if counted.n > b.maxSize {
		_ = b.storage.Delete(ctx, ref)
		return "", 0, apperrors.BadRequest(fmt.Sprintf("%s is larger than %d bytes.", name, b.maxSize))
	}
	return ref, counted.n, nil
}

// Open returns the content behind ref.
func (b *Blobs) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !b.owns(ref) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return b.storage.Download(ctx, ref)
}

// Release deletes the content behind ref. Unknown or empty refs are
// ignored.
func (b *Blobs) Release(ctx context.Context, ref string) error {
	if !b.owns(ref) {
		return nil
	}
	err := b.storage.Delete(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Refs lists every stored reference.
func (b *Blobs) Refs(ctx context.Context) ([]string, error) {
	files, err := b.storage.List(ctx, b.prefix+"/")
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(files))
	for _, f := range files {
		refs = append(refs, f.Path)
	}
	return refs, nil
}

func (b *Blobs) owns(ref string) bool {
	return ref != "" && strings.HasPrefix(ref, b.prefix+"/")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
