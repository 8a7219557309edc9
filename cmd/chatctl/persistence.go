package main

import (
	"context"
	"fmt"

	"github.com/kbukum/chatgate/bolt"
	"github.com/kbukum/chatgate/chat"
	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/database"
	"github.com/kbukum/chatgate/database/migration"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/observability"
	"github.com/kbukum/chatgate/provider"
	"github.com/kbukum/chatgate/redis"
	"github.com/kbukum/chatgate/storage"
)

// documentPrefix is where the storage backend keeps chat documents.
const documentPrefix = "documents"

// persistence opens the configured chat document backend on start and
// closes it on stop.
type persistence struct {
	cfg     PersistenceConfig
	log     *logger.Logger
	store   provider.Store[chat.Envelope]
	details string
	close   func() error
}

var (
	_ component.Component   = (*persistence)(nil)
	_ component.Describable = (*persistence)(nil)
)

func newPersistence(cfg PersistenceConfig, log *logger.Logger) *persistence {
	return &persistence{cfg: cfg, log: log.WithComponent("persistence")}
}

func (p *persistence) Name() string { return "persistence" }

func (p *persistence) Start(ctx context.Context) error {
	switch p.cfg.Backend {
	case BackendMemory:
		p.store = provider.NewMemoryStore[chat.Envelope]()
		p.details = "in memory"

	case BackendFile:
		fs, err := provider.NewFileStore[chat.Envelope](p.cfg.Dir)
		if err != nil {
			return err
		}
		p.store = fs
		p.details = fs.Path(chat.StorageKey)

	case BackendRedis:
		client, err := redis.New(p.cfg.Redis, p.log)
		if err != nil {
			return err
		}
		p.store = redis.NewTypedStore[chat.Envelope](client, "")
		p.details = p.cfg.Redis.Addr
		p.close = client.Close

	case BackendDatabase:
		db, err := database.Open(ctx, p.cfg.Database, p.log)
		if err != nil {
			return err
		}
		if err := migration.Up(db); err != nil {
			db.Close()
			return fmt.Errorf("migrate %s: %w", p.cfg.Database.DSN, err)
		}
		p.store = database.NewDocumentStore[chat.Envelope](db)
		p.details = p.cfg.Database.DSN
		p.close = db.Close

	case BackendBolt:
		db, err := bolt.Open(p.cfg.Bolt)
		if err != nil {
			return err
		}
		p.store = bolt.NewTypedStore[chat.Envelope](db, p.cfg.Bolt.Bucket)
		p.details = db.Path()
		p.close = db.Close

	case BackendStorage:
		s, err := storage.New(ctx, p.cfg.Storage, p.log)
		if err != nil {
			return err
		}
		ds := storage.NewDocumentStore[chat.Envelope](s, documentPrefix)
		p.store = ds
		p.details = p.cfg.Storage.Provider + ":" + ds.Path(chat.StorageKey)

	default:
		return fmt.Errorf("unknown persistence backend %q", p.cfg.Backend)
	}
	p.log.Debug("persistence ready", logger.Fields("backend", p.cfg.Backend, "details", p.details))
	return nil
}

func (p *persistence) Stop(context.Context) error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func (p *persistence) Health(ctx context.Context) observability.Health {
	h := observability.Health{Name: p.Name(), Status: observability.HealthStatusUp, Details: map[string]string{"backend": p.cfg.Backend}}
	if p.store == nil || !p.store.IsAvailable(ctx) {
		h.Status = observability.HealthStatusDown
		h.Message = p.cfg.Backend + " unavailable"
	}
	return h
}

func (p *persistence) Describe() component.Description {
	return component.Description{Name: "Persistence", Type: p.cfg.Backend, Details: p.details}
}

// Store returns the backend. It is nil before Start.
func (p *persistence) Store() provider.Store[chat.Envelope] {
	return p.store
}
