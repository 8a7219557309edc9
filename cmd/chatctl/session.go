package main

import (
	"context"

	"github.com/kbukum/chatgate/chat"
	"github.com/kbukum/chatgate/encryption"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/provider"
	"github.com/kbukum/chatgate/storage"
)

// attachmentPrefix is where attachment content lives in blob storage.
const attachmentPrefix = "attachments"

// session is the state one command works on.
type session struct {
	store       *chat.Store
	attachments *chat.Attachments
	sender      *chat.Sender
}

// openSession builds the store over backend and loads the persisted
// document.
func openSession(ctx context.Context, cfg *Config, backend provider.ContextStore[chat.Envelope], log *logger.Logger) (*session, error) {
	blobStore, err := storage.New(ctx, cfg.Attachments, log)
	if err != nil {
		return nil, err
	}
	attachments := chat.NewAttachments(storage.NewBlobs(blobStore, attachmentPrefix, cfg.Attachments.MaxFileSize))

	opts := []chat.StoreOption{
		chat.WithPersistence(backend),
		chat.WithReleaser(attachments),
		chat.WithStoreLogger(log),
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryption.New(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chat.WithEncryptor(enc))
	}
	store := chat.NewStore(opts...)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	sender, err := chat.NewSender(store, cfg.GatewayURL, log)
	if err != nil {
		return nil, err
	}
	return &session{store: store, attachments: attachments, sender: sender}, nil
}
