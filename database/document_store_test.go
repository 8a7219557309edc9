package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/chatgate/database"
	"github.com/kbukum/chatgate/database/migration"
	apperrors "github.com/kbukum/chatgate/errors"
)

type note struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func newStore(t *testing.T) (*database.DocumentStore[note], *database.DB) {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		DSN:      filepath.Join(t.TempDir(), "chat.db"),
		LogLevel: "silent",
	}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migration.Up(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database.NewDocumentStore[note](db), db
}

func TestDocumentStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	if s.Name() != "database" {
		t.Errorf("unexpected name %q", s.Name())
	}
	if !s.IsAvailable(ctx) {
		t.Fatal("expected store to be available")
	}

	got, err := s.Load(ctx, "trae-chat-storage")
	if err != nil || got != nil {
		t.Fatalf("missing key: got %v err %v", got, err)
	}

	if err := s.Save(ctx, "trae-chat-storage", &note{Title: "a", Tags: []string{"x"}}, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again replaces the row.
	if err := s.Save(ctx, "trae-chat-storage", &note{Title: "b"}, 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = s.Load(ctx, "trae-chat-storage")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.Title != "b" || len(got.Tags) != 0 {
		t.Errorf("unexpected %+v", got)
	}

	if err := s.Delete(ctx, "trae-chat-storage"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "trae-chat-storage"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if got, _ := s.Load(ctx, "trae-chat-storage"); got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestDocumentStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, db := newStore(t)

	if err := s.Save(ctx, "short", &note{Title: "t"}, time.Millisecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	got, err := s.Load(ctx, "short")
	if err != nil || got != nil {
		t.Fatalf("expected expired document to read as missing, got %+v err %v", got, err)
	}
	var count int64
	db.GormDB.Model(&database.Document{}).Where("doc_key = ?", "short").Count(&count)
	if count != 0 {
		t.Errorf("expired row not removed, count=%d", count)
	}
}

func TestDocumentStoreClosed(t *testing.T) {
	ctx := context.Background()
	s, db := newStore(t)
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.IsAvailable(ctx) {
		t.Error("closed database reported available")
	}
	err := s.Save(ctx, "k", &note{}, 0)
	if !apperrors.HasCode(err, apperrors.ErrCodeStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg database.Config
	cfg.ApplyDefaults()
	if cfg.DSN != "chatgate.db" || cfg.MaxOpenConns != 1 || cfg.LogLevel != "warn" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected log level error")
	}
}

func TestFromDatabase(t *testing.T) {
	if database.FromDatabase(nil, "document") != nil {
		t.Error("nil error should map to nil")
	}
	busy := database.FromDatabase(errString("database is locked"), "document")
	if !busy.Retryable {
		t.Error("lock contention should be retryable")
	}
	other := database.FromDatabase(errString("no such table: documents"), "document")
	if other.Retryable || other.Code != apperrors.ErrCodeStorage {
		t.Errorf("unexpected %+v", other)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
