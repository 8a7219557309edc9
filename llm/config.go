package llm

import "time"

// ProviderConfig is the per-provider section of the gateway config.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKeyEnv names the environment variable holding the default
	// credential. It is read on every request, not at startup.
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
	// Timeout bounds connection setup and the wait for response headers.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

var providerDefaults = map[ProviderKind]ProviderConfig{
	ProviderOpenAI:    {BaseURL: "https://api.openai.com/v1", APIKeyEnv: "OPENAI_API_KEY"},
	ProviderAnthropic: {BaseURL: "https://api.anthropic.com/v1", APIKeyEnv: "ANTHROPIC_API_KEY"},
	ProviderDeepSeek:  {BaseURL: "https://api.deepseek.com/v1", APIKeyEnv: "DEEPSEEK_API_KEY"},
	ProviderGoogle:    {BaseURL: "https://generativelanguage.googleapis.com/v1beta", APIKeyEnv: "GOOGLE_API_KEY"},
}

// DefaultProviderConfig returns the built-in settings for kind.
func DefaultProviderConfig(kind ProviderKind) ProviderConfig {
	cfg := providerDefaults[kind]
	cfg.Timeout = 60 * time.Second
	return cfg
}

// WithDefaults fills empty fields of c from the built-in settings for kind.
func (c ProviderConfig) WithDefaults(kind ProviderKind) ProviderConfig {
	d := DefaultProviderConfig(kind)
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = d.APIKeyEnv
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}
