package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kbukum/chatgate/database"
)

func openTemp(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		DSN:      filepath.Join(t.TempDir(), "chat.db"),
		LogLevel: "silent",
	}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpCreatesDocumentsTable(t *testing.T) {
	db := openTemp(t)

	if v, _, err := Version(db); err != nil || v != 0 {
		t.Fatalf("fresh database: version=%d err=%v", v, err)
	}
	if err := Up(db); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if !db.GormDB.Migrator().HasTable(&database.Document{}) {
		t.Fatal("documents table missing after Up")
	}
	v, dirty, err := Version(db)
	if err != nil || v != 1 || dirty {
		t.Errorf("version=%d dirty=%v err=%v", v, dirty, err)
	}

	// Running again is a no-op.
	if err := Up(db); err != nil {
		t.Errorf("second Up: %v", err)
	}
}

func TestDownDropsDocumentsTable(t *testing.T) {
	db := openTemp(t)
	if err := Up(db); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := Down(db); err != nil {
		t.Fatalf("Down: %v", err)
	}
	if db.GormDB.Migrator().HasTable(&database.Document{}) {
		t.Error("documents table still present after Down")
	}
}
