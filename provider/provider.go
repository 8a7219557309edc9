package provider

import "context"

// Provider is implemented by every store backend so callers can name it
// in logs and probe it before use.
type Provider interface {
	// Name returns the backend's name, e.g. "file" or "redis".
	Name() string
	// IsAvailable checks if the backend is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Store is a named ContextStore.
type Store[C any] interface {
	Provider
	ContextStore[C]
}
