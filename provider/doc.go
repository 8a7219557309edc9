// Package provider defines the document store contract shared by every
// persistence backend.
//
// ContextStore[C] loads, saves and deletes one typed document per key.
// Store[C] adds a name and an availability probe so callers can report
// which backend they use:
//
//	store, err := provider.NewFileStore[chat.Envelope](dir)
//	env, err := store.Load(ctx, chat.StorageKey) // (nil, nil) when absent
//
// MemoryStore and FileStore live here. The redis, database, bolt and
// storage packages provide the others.
package provider
