package llm

import "slices"

// ProviderKind names an upstream API family.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderDeepSeek  ProviderKind = "deepseek"
	ProviderGoogle    ProviderKind = "google"
)

// Providers lists every kind in display order.
var Providers = []ProviderKind{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek, ProviderGoogle}

// ModelConfig describes one selectable model.
type ModelConfig struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Provider ProviderKind `json:"provider"`
	Icon     string       `json:"icon"`
}

var models = []ModelConfig{
	{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, Icon: "🤖"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: ProviderOpenAI, Icon: "🤖"},
	{ID: "claude-3-opus", Name: "Claude 3 Opus", Provider: ProviderAnthropic, Icon: "🧠"},
	{ID: "claude-3-sonnet", Name: "Claude 3 Sonnet", Provider: ProviderAnthropic, Icon: "🧠"},
	{ID: "deepseek-chat", Name: "DeepSeek Chat", Provider: ProviderDeepSeek, Icon: "🔍"},
	{ID: "gemini-pro", Name: "Gemini Pro", Provider: ProviderGoogle, Icon: "✨"},
}

var displayNames = map[ProviderKind]string{
	ProviderOpenAI:    "OpenAI",
	ProviderAnthropic: "Anthropic",
	ProviderDeepSeek:  "DeepSeek",
	ProviderGoogle:    "Google",
}

var icons = map[ProviderKind]string{
	ProviderOpenAI:    "🤖",
	ProviderAnthropic: "🧠",
	ProviderDeepSeek:  "🔍",
	ProviderGoogle:    "✨",
}

// Resolve looks up a model id. Unknown ids return false, never an error.
func Resolve(modelID string) (ModelConfig, bool) {
	i := slices.IndexFunc(models, func(m ModelConfig) bool { return m.ID == modelID })
	if i < 0 {
		return ModelConfig{}, false
	}
	return models[i], true
}

// AllModels returns every model in a stable order.
func AllModels() []ModelConfig {
	return slices.Clone(models)
}

// ModelsByProvider returns the models served by kind.
func ModelsByProvider(kind ProviderKind) []ModelConfig {
	var out []ModelConfig
	for _, m := range models {
		if m.Provider == kind {
			out = append(out, m)
		}
	}
	return out
}

// ProviderIcon returns the icon shown next to kind, or "" when unknown.
func ProviderIcon(kind ProviderKind) string {
	return icons[kind]
}

// Valid reports whether kind is a known provider.
func (k ProviderKind) Valid() bool {
	return slices.Contains(Providers, k)
}

// DisplayName returns the provider's brand name, or the kind itself when
// unknown.
func (k ProviderKind) DisplayName() string {
	if n, ok := displayNames[k]; ok {
		return n
	}
	return string(k)
}
