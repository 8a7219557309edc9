package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/chatgate/encryption"
	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/logger"
)

// StorageKey is the document key the store persists under.
const StorageKey = "trae-chat-storage"

// SchemaVersion is the version written by Save. Older documents are
// migrated on Load.
const SchemaVersion = 1

// Envelope is the persisted document. State stays raw so migrations can
// inspect fields that the current types would default away.
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// persistedState is the body of Envelope.State at SchemaVersion.
type persistedState struct {
	Conversations         []Conversation `json:"conversations"`
	CurrentConversationID *string        `json:"currentConversationId"`
	Config                AppConfig      `json:"config"`
}

// migrations[v] upgrades a state document from version v to v+1.
var migrations = map[int]func(map[string]any) error{
	0: func(state map[string]any) error {
		cfg, _ := state["config"].(map[string]any)
		if cfg == nil {
			cfg = map[string]any{}
			state["config"] = cfg
		}
		if _, ok := cfg["maxTokens"]; !ok {
			cfg["maxTokens"] = DefaultMaxTokens
		}
		return nil
	},
}

// Migrate upgrades env to SchemaVersion. Documents newer than
// SchemaVersion are rejected.
func Migrate(env Envelope) (Envelope, error) {
	if env.Version > SchemaVersion {
		return env, fmt.Errorf("document version %d is newer than supported version %d", env.Version, SchemaVersion)
	}
	if env.Version == SchemaVersion {
		return env, nil
	}

	state := map[string]any{}
	if len(env.State) > 0 && string(env.State) != "null" {
		if err := json.Unmarshal(env.State, &state); err != nil {
			return env, fmt.Errorf("decode version %d state: %w", env.Version, err)
		}
	}
	for v := env.Version; v < SchemaVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return env, fmt.Errorf("no migration from version %d", v)
		}
		if err := step(state); err != nil {
			return env, fmt.Errorf("migrate version %d: %w", v, err)
		}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return env, err
	}
	return Envelope{Version: SchemaVersion, State: raw}, nil
}

// Load replaces the in-memory state with the persisted document. A
// missing document leaves the store empty. Messages left streaming by an
// interrupted run are finalized.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	env, err := s.persist.Load(ctx, s.key)
	if err != nil {
		return errors.StorageError("chat", err)
	}
	if env == nil {
		return nil
	}
	if env.Version < SchemaVersion {
		s.log.Info("migrating chat document", logger.Fields("from", env.Version, "to", SchemaVersion))
	}
	migrated, err := Migrate(*env)
	if err != nil {
		return errors.Internal(err)
	}

	var st persistedState
	if err := json.Unmarshal(migrated.State, &st); err != nil {
		return errors.Internal(fmt.Errorf("decode chat document: %w", err))
	}
	keys, err := encryption.OpenMap(s.enc, st.Config.APIKeys)
	if err != nil {
		return errors.Internal(fmt.Errorf("open api keys: %w", err))
	}
	st.Config.APIKeys = keys

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accept(st)
	return nil
}

// accept installs a decoded document, repairing values that break the
// store's invariants.
func (s *Store) accept(st persistedState) {
	cfg := st.Config
	if cfg.Theme == "" {
		cfg.Theme = ThemeSystem
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	cfg.Temperature = clampTemperature(cfg.Temperature)
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	s.config = cfg.clone()

	s.convs = make([]*Conversation, 0, len(st.Conversations))
	for i := range st.Conversations {
		c := st.Conversations[i].clone()
		if c.Messages == nil {
			c.Messages = []Message{}
		}
		for j := range c.Messages {
			if c.Messages[j].IsStreaming {
				c.Messages[j].IsStreaming = false
				s.log.Warn("finalized interrupted message", logger.Fields(
					logger.FieldConversationID, c.ID,
					logger.FieldMessageID, c.Messages[j].ID,
				))
			}
		}
		s.convs = append(s.convs, &c)
	}

	s.current = ""
	if st.CurrentConversationID != nil {
		if _, c := s.find(*st.CurrentConversationID); c != nil {
			s.current = c.ID
		}
	}
}

// Save persists the current state.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	env, err := s.snapshotLocked()
	if err != nil {
		return err
	}
	if err := s.persist.Save(ctx, s.key, &env, 0); err != nil {
		s.log.Error("chat document save failed", logger.Fields(logger.FieldError, err.Error()))
		return errors.StorageError("chat", err)
	}
	return nil
}

// snapshotLocked encodes the state at SchemaVersion. Attachment
// references are process-scoped and are left out.
func (s *Store) snapshotLocked() (Envelope, error) {
	st := persistedState{
		Conversations: make([]Conversation, len(s.convs)),
		Config:        s.config.clone(),
	}
	for i, c := range s.convs {
		st.Conversations[i] = c.clone()
		for _, m := range st.Conversations[i].Messages {
			for j := range m.Attachments {
				m.Attachments[j].Ref = ""
			}
		}
	}
	if s.current != "" {
		cur := s.current
		st.CurrentConversationID = &cur
	}
	keys, err := encryption.SealMap(s.enc, st.Config.APIKeys)
	if err != nil {
		return Envelope{}, errors.Internal(fmt.Errorf("seal api keys: %w", err))
	}
	st.Config.APIKeys = keys

	raw, err := json.Marshal(st)
	if err != nil {
		return Envelope{}, errors.Internal(err)
	}
	return Envelope{Version: SchemaVersion, State: raw}, nil
}
