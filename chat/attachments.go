package chat

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbukum/chatgate/storage"
)

// Attachments puts file content into blob storage and builds the
// FileAttachment records that reference it.
type Attachments struct {
	blobs *storage.Blobs
}

// NewAttachments creates an attachment helper over blobs.
func NewAttachments(blobs *storage.Blobs) *Attachments {
	return &Attachments{blobs: blobs}
}

// Add stores r as name. An empty mimeType is guessed from the extension.
func (a *Attachments) Add(ctx context.Context, name, mimeType string, r io.Reader) (FileAttachment, error) {
	id := uuid.NewString()
	ref, size, err := a.blobs.Put(ctx, id, name, r)
	if err != nil {
		return FileAttachment{}, err
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return FileAttachment{ID: id, Name: filepath.Base(name), MimeType: mimeType, Size: size, Ref: ref}, nil
}

// AddFile stores the file at path.
func (a *Attachments) AddFile(ctx context.Context, path string) (FileAttachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileAttachment{}, err
	}
	defer f.Close()
	return a.Add(ctx, filepath.Base(path), "", f)
}

// Open returns the content of att. An attachment without a reference
// reports storage.ErrNotFound.
func (a *Attachments) Open(ctx context.Context, att FileAttachment) (io.ReadCloser, error) {
	return a.blobs.Open(ctx, att.Ref)
}

// Release frees the content of a reference. It lets Attachments serve as
// the Store's Releaser.
func (a *Attachments) Release(ctx context.Context, ref string) error {
	return a.blobs.Release(ctx, ref)
}

// Sweep releases every stored blob not in keep and returns how many it
// released. Pass Store.AttachmentRefs to drop orphaned uploads.
func (a *Attachments) Sweep(ctx context.Context, keep map[string]bool) (int, error) {
	refs, err := a.blobs.Refs(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ref := range refs {
		if keep[ref] {
			continue
		}
		if err := a.blobs.Release(ctx, ref); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
