// Package anthropic implements the Messages API streaming dialect.
package anthropic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/httpclient/sse"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
)

// APIVersion is sent as the anthropic-version header.
const APIVersion = "2023-06-01"

// Dialect maps llm.ChatRequest to the Messages API.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

// NewDialect returns the Messages API dialect.
func NewDialect() *Dialect { return &Dialect{} }

// New creates a ready adapter for Anthropic.
func New(cfg llm.ProviderConfig, log *logger.Logger) (*llm.Adapter, error) {
	return llm.NewAdapter(NewDialect(), cfg.WithDefaults(llm.ProviderAnthropic), Headers(), log)
}

// Headers returns the fixed headers every request carries.
func Headers() map[string]string {
	return map[string]string{"anthropic-version": APIVersion}
}

func (d *Dialect) Name() string { return llm.ProviderAnthropic.DisplayName() }

func (d *Dialect) Endpoint(string) (string, map[string]string) {
	return "/messages", nil
}

func (d *Dialect) Auth(credential string) *httpclient.AuthConfig {
	return httpclient.APIKeyHeader(credential, "x-api-key")
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// BuildRequest lifts the first system message into the system field.
// Later system messages are dropped.
func (d *Dialect) BuildRequest(req llm.ChatRequest) (any, error) {
	out := request{
		Model:       req.Model,
		Messages:    make([]message, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.EffectiveMaxTokens(),
		Stream:      true,
	}
	systemSeen := false
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			if !systemSeen {
				out.System = m.Content
				systemSeen = true
			}
		case llm.RoleUser, llm.RoleAssistant:
			out.Messages = append(out.Messages, message{Role: m.Role, Content: m.Content})
		}
	}
	return out, nil
}

type event struct {
	Type  string `json:"type"`
	Delta *struct {
		Type        string          `json:"type"`
		Text        *string         `json:"text"`
		JSON        json.RawMessage `json:"json"`
		PartialJSON string          `json:"partial_json"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseEvent yields text from content_block_delta frames. Every other
// frame type is ignored except message_stop and error.
func (d *Dialect) ParseEvent(ev *sse.Event) (string, bool, error) {
	var e event
	if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
		return "", false, fmt.Errorf("anthropic: decode %q event: %w", ev.Event, err)
	}
	if e.Type == "" {
		e.Type = ev.Event
	}

	switch e.Type {
	case "content_block_delta":
		if e.Delta == nil {
			return "", false, nil
		}
		switch {
		case e.Delta.Text != nil:
			return *e.Delta.Text, false, nil
		case len(e.Delta.JSON) > 0 && string(e.Delta.JSON) != "null":
			var buf bytes.Buffer
			if err := json.Compact(&buf, e.Delta.JSON); err != nil {
				return "", false, fmt.Errorf("anthropic: compact json delta: %w", err)
			}
			return buf.String(), false, nil
		default:
			return e.Delta.PartialJSON, false, nil
		}
	case "message_stop":
		return "", true, nil
	case "error":
		if e.Error != nil {
			return "", false, fmt.Errorf("anthropic: %s: %s", e.Error.Type, e.Error.Message)
		}
		return "", false, fmt.Errorf("anthropic: stream error")
	}
	return "", false, nil
}
