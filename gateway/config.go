package gateway

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/chatgate/config"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/observability"
	"github.com/kbukum/chatgate/resilience"
	"github.com/kbukum/chatgate/server"
)

// Config is the chatgate binary's configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server         server.Config        `yaml:"server" mapstructure:"server"`
	Providers      ProvidersConfig      `yaml:"providers" mapstructure:"providers"`
	CircuitBreaker resilience.Config    `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Observability  observability.Config `yaml:"observability" mapstructure:"observability"`
	Fallback       FallbackConfig       `yaml:"fallback" mapstructure:"fallback"`
	Activity       ActivityConfig       `yaml:"activity" mapstructure:"activity"`
}

// ProvidersConfig holds one section per provider kind.
type ProvidersConfig struct {
	OpenAI    llm.ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Anthropic llm.ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	DeepSeek  llm.ProviderConfig `yaml:"deepseek" mapstructure:"deepseek"`
	Google    llm.ProviderConfig `yaml:"google" mapstructure:"google"`
}

// FallbackConfig paces the reply for unknown models.
type FallbackConfig struct {
	ChunkDelay time.Duration `yaml:"chunk_delay" mapstructure:"chunk_delay"`
}

// ActivityConfig controls the dispatch activity feed.
type ActivityConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`
}

// DefaultFallbackDelay is the pause between fallback words.
const DefaultFallbackDelay = 50 * time.Millisecond

// For returns the section for kind with defaults filled in.
func (p ProvidersConfig) For(kind llm.ProviderKind) llm.ProviderConfig {
	var c llm.ProviderConfig
	switch kind {
	case llm.ProviderOpenAI:
		c = p.OpenAI
	case llm.ProviderAnthropic:
		c = p.Anthropic
	case llm.ProviderDeepSeek:
		c = p.DeepSeek
	case llm.ProviderGoogle:
		c = p.Google
	}
	return c.WithDefaults(kind)
}

// ApplyDefaults fills unset fields across every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "chatgate"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.CircuitBreaker.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Providers.OpenAI = c.Providers.For(llm.ProviderOpenAI)
	c.Providers.Anthropic = c.Providers.For(llm.ProviderAnthropic)
	c.Providers.DeepSeek = c.Providers.For(llm.ProviderDeepSeek)
	c.Providers.Google = c.Providers.For(llm.ProviderGoogle)
	if c.Fallback.ChunkDelay == 0 {
		c.Fallback.ChunkDelay = DefaultFallbackDelay
	}
	if c.Activity.KeepAlive == 0 {
		c.Activity.KeepAlive = 30 * time.Second
	}
}

// Validate checks the configuration after ApplyDefaults.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return fmt.Errorf("config.%w", err)
	}
	for _, kind := range llm.Providers {
		pc := c.Providers.For(kind)
		u, err := url.Parse(pc.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config.providers.%s.base_url must be an absolute URL (got: %q)", kind, pc.BaseURL)
		}
	}
	if c.Fallback.ChunkDelay < 0 {
		return fmt.Errorf("config.fallback.chunk_delay must be non-negative")
	}
	return nil
}
