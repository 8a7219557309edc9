// Package database is the SQLite persistence backend. It opens a GORM
// connection with retry, logs queries through the chatgate logger and
// stores JSON documents in a single versioned table.
//
//	db, err := database.Open(ctx, cfg, log)
//	if err != nil { ... }
//	if err := migration.Up(db); err != nil { ... }
//	store := database.NewDocumentStore[chat.Envelope](db)
//
// The schema lives in migrations/ and is embedded into the binary.
package database
