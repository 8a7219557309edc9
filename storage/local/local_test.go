package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/chatgate/storage"
)

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	if err := s.Upload(ctx, "a/b.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	ok, err := s.Exists(ctx, "a/b.txt")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}

	rc, err := s.Download(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hello" {
		t.Errorf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, "a/b.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "a/b.txt"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if _, err := s.Download(ctx, "a/b.txt"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	base := filepath.Join(root, "base")
	s, err := NewStorage(base)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	if err := s.Upload(ctx, "../../escape.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the base directory")
	}
	if _, err := os.Stat(filepath.Join(base, "escape.txt")); err != nil {
		t.Errorf("expected file inside base: %v", err)
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	for _, p := range []string{"attachments/1/a.png", "attachments/2/b.txt", "documents/x.json"} {
		if err := s.Upload(ctx, p, strings.NewReader(p)); err != nil {
			t.Fatalf("upload %s: %v", p, err)
		}
	}

	files, err := s.List(ctx, "attachments/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].Path != "attachments/1/a.png" || files[0].ContentType != "image/png" {
		t.Errorf("unexpected first entry %+v", files[0])
	}
	if files[1].Path != "attachments/2/b.txt" {
		t.Errorf("unexpected second entry %+v", files[1])
	}
}

func TestFactoryRegistered(t *testing.T) {
	s, err := storage.New(context.Background(), storage.Config{Provider: storage.ProviderLocal, BasePath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}
