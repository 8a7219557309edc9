package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/chatgate/bolt"
	"github.com/kbukum/chatgate/chat"
	"github.com/kbukum/chatgate/database"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/observability"
	"github.com/kbukum/chatgate/redis"
	"github.com/kbukum/chatgate/storage"
	"github.com/kbukum/chatgate/testutil"
)

func persistenceConfig(t *testing.T, backend string) PersistenceConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		Persistence: PersistenceConfig{
			Backend:  backend,
			Dir:      dir,
			Database: database.Config{DSN: filepath.Join(dir, "chat.db")},
			Bolt:     bolt.Config{Path: filepath.Join(dir, "chat.bolt")},
			Storage:  storage.Config{BasePath: dir},
		},
		Attachments: storage.Config{BasePath: dir},
	}
	cfg.ApplyDefaults()
	return cfg.Persistence
}

func TestPersistenceBackendsRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			cfg := persistenceConfig(t, backend)
			if backend == BackendRedis {
				cfg.Redis = redis.Config{Addr: mr.Addr()}
				cfg.Redis.ApplyDefaults()
			}
			p := testutil.Start(t, newPersistence(cfg, logger.Nop()))

			h := testutil.RequireHealthy(t, p)
			assert.Equal(t, "persistence", h.Name)
			assert.Equal(t, backend, h.Details["backend"])
			assert.Equal(t, backend, p.Describe().Type)

			ctx := context.Background()
			store := p.Store()
			require.NotNil(t, store)
			require.NoError(t, store.Delete(ctx, chat.StorageKey))

			got, err := store.Load(ctx, chat.StorageKey)
			require.NoError(t, err)
			assert.Nil(t, got)

			in := &chat.Envelope{Version: chat.SchemaVersion, State: json.RawMessage(`{"conversations":[]}`)}
			require.NoError(t, store.Save(ctx, chat.StorageKey, in, 0))
			got, err = store.Load(ctx, chat.StorageKey)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, chat.SchemaVersion, got.Version)
			assert.JSONEq(t, `{"conversations":[]}`, string(got.State))
		})
	}
}

func TestPersistenceDownBeforeStart(t *testing.T) {
	p := newPersistence(persistenceConfig(t, BackendMemory), logger.Nop())
	h := p.Health(context.Background())
	assert.Equal(t, observability.HealthStatusDown, h.Status)
	assert.Equal(t, "memory unavailable", h.Message)
	assert.Nil(t, p.Store())
}

func TestPersistenceUnknownBackend(t *testing.T) {
	p := newPersistence(PersistenceConfig{Backend: "floppy"}, logger.Nop())
	err := p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown persistence backend "floppy"`)
}
