package chat

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/kbukum/chatgate/llm"
)

// Themes accepted by AppConfig.Theme.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Defaults of a fresh store.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = llm.DefaultMaxTokens
)

// FileAttachment is a file owned by one message. Ref points at the
// content in the attachment store while the process lives; it is never
// persisted.
type FileAttachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Size     int64  `json:"size"`
	Ref      string `json:"ref,omitempty"`
}

// Message is one turn of a conversation. Content may change only while
// IsStreaming is true; clearing IsStreaming finalizes the message.
type Message struct {
	ID          string           `json:"id"`
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	Timestamp   time.Time        `json:"timestamp"`
	IsStreaming bool             `json:"isStreaming"`
	Attachments []FileAttachment `json:"files,omitempty"`
}

// Conversation is an ordered message history bound to one model.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Model     string    `json:"model"`
}

// AppConfig holds user preferences. APIKeys is keyed by provider kind.
type AppConfig struct {
	Theme        string            `json:"theme"`
	DefaultModel string            `json:"defaultModel"`
	Temperature  float64           `json:"temperature"`
	MaxTokens    int               `json:"maxTokens"`
	APIKeys      map[string]string `json:"apiKeys"`
}

// DefaultConfig returns the configuration of a fresh store.
func DefaultConfig() AppConfig {
	return AppConfig{
		Theme:        ThemeSystem,
		DefaultModel: DefaultModel,
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
		APIKeys:      map[string]string{},
	}
}

// ConfigUpdate changes the non-nil fields of AppConfig. APIKeys entries
// are merged; an empty value removes the key.
type ConfigUpdate struct {
	Theme        *string
	DefaultModel *string
	Temperature  *float64
	MaxTokens    *int
	APIKeys      map[string]string
}

// clampTemperature keeps t inside [0, 1]. NaN maps to DefaultTemperature.
func clampTemperature(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultTemperature
	}
	return max(0, min(1, t))
}

func (m Message) clone() Message {
	m.Attachments = slices.Clone(m.Attachments)
	return m
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m.clone()
	}
	return out
}

func (c AppConfig) clone() AppConfig {
	c.APIKeys = maps.Clone(c.APIKeys)
	if c.APIKeys == nil {
		c.APIKeys = map[string]string{}
	}
	return c
}

// streaming reports whether any message of c is still open.
func (c *Conversation) streaming() bool {
	for i := range c.Messages {
		if c.Messages[i].IsStreaming {
			return true
		}
	}
	return false
}

func (c *Conversation) message(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}
