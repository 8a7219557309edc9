package gateway

import (
	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/validation"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages    []llm.Message `json:"messages" validate:"dive"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `json:"maxTokens"`
	APIKey      string        `json:"apiKey,omitempty"`
}

// CheckRequired rejects a request without messages or model. It is the
// only check an unresolved model's fallback reply depends on.
func (r *ChatRequest) CheckRequired() error {
	if len(r.Messages) == 0 || r.Model == "" {
		return errors.BadRequest("Missing required parameters: messages and model")
	}
	return nil
}

// Validate runs CheckRequired, then applies the struct tags.
func (r *ChatRequest) Validate() error {
	if err := r.CheckRequired(); err != nil {
		return err
	}
	return validation.Validate(r)
}

// LLM converts the request to the provider-neutral form.
func (r *ChatRequest) LLM() llm.ChatRequest {
	return llm.ChatRequest{
		Model:       r.Model,
		Messages:    r.Messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}
