package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTokens replaces a non-positive MaxTokens before it reaches a
// provider.
const DefaultMaxTokens = 4000

// Message is one turn of a conversation as sent to a provider.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the provider-neutral streaming request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"maxTokens"`
}

// EffectiveMaxTokens returns MaxTokens, or DefaultMaxTokens when it is
// zero or negative.
func (r ChatRequest) EffectiveMaxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// LastContent returns the content of the final message, or "".
func (r ChatRequest) LastContent() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// StreamChunk is one element of a provider stream. A chunk carries either
// a non-empty Content delta or a terminal Err.
type StreamChunk struct {
	Content string
	Err     error
}
