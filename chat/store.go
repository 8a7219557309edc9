package chat

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/chatgate/encryption"
	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/provider"
	"github.com/kbukum/chatgate/validation"
)

// Releaser frees attachment content. storage.Blobs implements it.
type Releaser interface {
	Release(ctx context.Context, ref string) error
}

// Store holds every conversation and the app config. Accessors return
// deep copies; mutations persist the whole document before returning.
// A failed save leaves the in-memory change in place and returns the
// error.
type Store struct {
	mu       sync.RWMutex
	convs    []*Conversation
	current  string
	config   AppConfig
	reserved map[string]bool

	persist  provider.ContextStore[Envelope]
	key      string
	enc      encryption.Encryptor
	releaser Releaser
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersistence saves the store to backend after every mutation.
func WithPersistence(backend provider.ContextStore[Envelope]) StoreOption {
	return func(s *Store) { s.persist = backend }
}

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithEncryptor seals API keys in the persisted document.
func WithEncryptor(enc encryption.Encryptor) StoreOption {
	return func(s *Store) { s.enc = enc }
}

// WithReleaser frees attachment content when messages are discarded.
func WithReleaser(r Releaser) StoreOption {
	return func(s *Store) { s.releaser = r }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(log *logger.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store with the default config. Call Load to
// restore persisted state.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		config:   DefaultConfig(),
		reserved: make(map[string]bool),
		key:      StorageKey,
		log:      logger.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("chat.store")
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) find(id string) (int, *Conversation) {
	for i, c := range s.convs {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

func (s *Store) mustFind(id string) (*Conversation, error) {
	_, c := s.find(id)
	if c == nil {
		return nil, errors.NotFound("conversation", id)
	}
	return c, nil
}

// CreateConversation adds an empty conversation, makes it current and
// returns its id. An empty model uses the configured default.
func (s *Store) CreateConversation(ctx context.Context, model string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if model == "" {
		model = s.config.DefaultModel
	}
	now := s.timestamp()
	c := &Conversation{
		ID:        s.newID(),
		Title:     "New chat " + now.Local().Format("15:04:05"),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
		Model:     model,
	}
	s.convs = append(s.convs, c)
	s.current = c.ID
	return c.ID, s.saveLocked(ctx)
}

// SwitchConversation makes id current. An unknown id leaves the state
// unchanged and returns NOT_FOUND.
func (s *Store) SwitchConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.mustFind(id); err != nil {
		return err
	}
	s.current = id
	return s.saveLocked(ctx)
}

// DeleteConversation removes id and releases its attachments. If it was
// current, the first remaining conversation becomes current.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, c := s.find(id)
	if c == nil {
		return errors.NotFound("conversation", id)
	}
	s.convs = append(s.convs[:i], s.convs[i+1:]...)
	if s.current == id {
		s.current = ""
		if len(s.convs) > 0 {
			s.current = s.convs[0].ID
		}
	}
	s.releaseMessages(ctx, c.Messages)
	return s.saveLocked(ctx)
}

// AddMessage appends msg and returns it as stored. Missing id and
// timestamp are filled in.
func (s *Store) AddMessage(ctx context.Context, conversationID string, msg Message) (Message, error) {
	if err := validation.New().
		OneOf("role", msg.Role, []string{llm.RoleUser, llm.RoleAssistant, llm.RoleSystem}).
		Required("role", msg.Role).
		Validate(); err != nil {
		return Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(conversationID)
	if err != nil {
		return Message{}, err
	}
	if msg.ID == "" {
		msg.ID = s.newID()
	} else if c.message(msg.ID) != nil {
		return Message{}, errors.Conflict(fmt.Sprintf("Message %s already exists.", msg.ID))
	}
	now := s.timestamp()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	msg = msg.clone()
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = now
	return msg.clone(), s.saveLocked(ctx)
}

// UpdateMessage replaces the content of a streaming message. An unknown
// message id is ignored; a finalized message is rejected with CONFLICT.
func (s *Store) UpdateMessage(ctx context.Context, conversationID, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(conversationID)
	if err != nil {
		return err
	}
	m := c.message(messageID)
	if m == nil {
		return nil
	}
	if !m.IsStreaming {
		return errors.Conflict(fmt.Sprintf("Message %s is finalized.", messageID))
	}
	m.Content = content
	c.UpdatedAt = s.timestamp()
	return s.saveLocked(ctx)
}

// SetMessageStreaming opens or finalizes a message. Finalizing is
// terminal: re-opening a finalized message is rejected with CONFLICT and
// finalizing it again is a no-op. An unknown message id is ignored.
func (s *Store) SetMessageStreaming(ctx context.Context, conversationID, messageID string, streaming bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(conversationID)
	if err != nil {
		return err
	}
	m := c.message(messageID)
	if m == nil || m.IsStreaming == streaming {
		return nil
	}
	if streaming {
		return errors.Conflict(fmt.Sprintf("Message %s is finalized.", messageID))
	}
	m.IsStreaming = false
	c.UpdatedAt = s.timestamp()
	return s.saveLocked(ctx)
}

// RemoveAttachment detaches an attachment from its message and releases
// its content.
func (s *Store) RemoveAttachment(ctx context.Context, conversationID, messageID, attachmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(conversationID)
	if err != nil {
		return err
	}
	m := c.message(messageID)
	if m == nil {
		return errors.NotFound("message", messageID)
	}
	for i, a := range m.Attachments {
		if a.ID == attachmentID {
			m.Attachments = append(m.Attachments[:i], m.Attachments[i+1:]...)
			c.UpdatedAt = s.timestamp()
			s.release(ctx, a)
			return s.saveLocked(ctx)
		}
	}
	return errors.NotFound("attachment", attachmentID)
}

// ClearConversation removes every message of id.
func (s *Store) ClearConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(id)
	if err != nil {
		return err
	}
	s.releaseMessages(ctx, c.Messages)
	c.Messages = []Message{}
	c.UpdatedAt = s.timestamp()
	return s.saveLocked(ctx)
}

// ClearAllConversations removes every conversation.
func (s *Store) ClearAllConversations(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.convs {
		s.releaseMessages(ctx, c.Messages)
	}
	s.convs = nil
	s.current = ""
	return s.saveLocked(ctx)
}

// RenameConversation sets the title of id.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if err := validation.New().Required("title", title).MaxLength("title", title, 200).Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(id)
	if err != nil {
		return err
	}
	c.Title = title
	return s.saveLocked(ctx)
}

// UpdateConfig applies the non-nil fields of u. Temperature is clamped
// to [0, 1]; NaN is rejected.
func (s *Store) UpdateConfig(ctx context.Context, u ConfigUpdate) error {
	v := validation.New()
	if u.Theme != nil {
		v.Required("theme", *u.Theme).OneOf("theme", *u.Theme, []string{ThemeLight, ThemeDark, ThemeSystem})
	}
	if u.DefaultModel != nil {
		v.Required("defaultModel", *u.DefaultModel)
	}
	if u.Temperature != nil {
		v.Custom(!math.IsNaN(*u.Temperature), "temperature", "must be a number")
	}
	if u.MaxTokens != nil {
		v.Custom(*u.MaxTokens > 0, "maxTokens", "must be positive")
	}
	for kind := range u.APIKeys {
		v.Custom(llm.ProviderKind(kind).Valid(), "apiKeys."+kind, "unknown provider")
	}
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Theme != nil {
		s.config.Theme = *u.Theme
	}
	if u.DefaultModel != nil {
		s.config.DefaultModel = *u.DefaultModel
	}
	if u.Temperature != nil {
		s.config.Temperature = clampTemperature(*u.Temperature)
	}
	if u.MaxTokens != nil {
		s.config.MaxTokens = *u.MaxTokens
	}
	for kind, key := range u.APIKeys {
		if key == "" {
			delete(s.config.APIKeys, kind)
		} else {
			s.config.APIKeys[kind] = key
		}
	}
	return s.saveLocked(ctx)
}

// UpdateAPIKey stores key for provider. An empty key removes it.
func (s *Store) UpdateAPIKey(ctx context.Context, provider, key string) error {
	return s.UpdateConfig(ctx, ConfigUpdate{APIKeys: map[string]string{provider: key}})
}

// SetDefaultModel sets the model used by new conversations.
func (s *Store) SetDefaultModel(ctx context.Context, model string) error {
	return s.UpdateConfig(ctx, ConfigUpdate{DefaultModel: &model})
}

// SetTemperature sets the sampling temperature, clamped to [0, 1].
func (s *Store) SetTemperature(ctx context.Context, t float64) error {
	return s.UpdateConfig(ctx, ConfigUpdate{Temperature: &t})
}

// Reserve marks a conversation as having a send in flight. It fails with
// CONFLICT when another send holds it or a reply is still streaming.
// The returned func releases the reservation.
func (s *Store) Reserve(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.mustFind(id)
	if err != nil {
		return nil, err
	}
	if s.reserved[id] || c.streaming() {
		return nil, errors.Busy(id)
	}
	s.reserved[id] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.reserved, id)
			s.mu.Unlock()
		})
	}, nil
}

// CurrentID returns the current conversation id, or "".
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CurrentConversation returns a copy of the current conversation.
func (s *Store) CurrentConversation() (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return Conversation{}, false
	}
	_, c := s.find(s.current)
	if c == nil {
		return Conversation{}, false
	}
	return c.clone(), true
}

// CurrentMessages returns the current conversation's messages, or nil.
func (s *Store) CurrentMessages() []Message {
	c, ok := s.CurrentConversation()
	if !ok {
		return nil
	}
	return c.Messages
}

// Conversation returns a copy of conversation id.
func (s *Store) Conversation(id string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, c := s.find(id)
	if c == nil {
		return Conversation{}, false
	}
	return c.clone(), true
}

// Conversations returns copies of all conversations in creation order.
func (s *Store) Conversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, len(s.convs))
	for i, c := range s.convs {
		out[i] = c.clone()
	}
	return out
}

// Config returns a copy of the app config.
func (s *Store) Config() AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.clone()
}

func (s *Store) releaseMessages(ctx context.Context, msgs []Message) {
	for _, m := range msgs {
		for _, a := range m.Attachments {
			s.release(ctx, a)
		}
	}
}

func (s *Store) release(ctx context.Context, a FileAttachment) {
	if s.releaser == nil || a.Ref == "" {
		return
	}
	if err := s.releaser.Release(ctx, a.Ref); err != nil {
		s.log.Warn("attachment release failed", logger.Fields(
			"attachment_id", a.ID,
			logger.FieldError, err.Error(),
		))
	}
}

// AttachmentRefs returns the references of every attachment in memory.
func (s *Store) AttachmentRefs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[string]bool)
	for _, c := range s.convs {
		for _, m := range c.Messages {
			for _, a := range m.Attachments {
				if a.Ref != "" {
					refs[a.Ref] = true
				}
			}
		}
	}
	return refs
}
