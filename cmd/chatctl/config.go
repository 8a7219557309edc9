package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/kbukum/chatgate/bolt"
	"github.com/kbukum/chatgate/config"
	"github.com/kbukum/chatgate/database"
	"github.com/kbukum/chatgate/redis"
	"github.com/kbukum/chatgate/storage"
)

// Persistence backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendBolt     = "bolt"
	BackendStorage  = "storage"
)

var backends = []string{BackendMemory, BackendFile, BackendRedis, BackendDatabase, BackendBolt, BackendStorage}

// PersistenceConfig selects where the chat document lives. Only the
// section of the selected backend is used.
type PersistenceConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Dir holds the JSON document of the file backend.
	Dir      string          `yaml:"dir" mapstructure:"dir"`
	Redis    redis.Config    `yaml:"redis" mapstructure:"redis"`
	Database database.Config `yaml:"database" mapstructure:"database"`
	Bolt     bolt.Config     `yaml:"bolt" mapstructure:"bolt"`
	Storage  storage.Config  `yaml:"storage" mapstructure:"storage"`
}

// Config is the chatctl configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	GatewayURL  string            `yaml:"gateway_url" mapstructure:"gateway_url"`
	Persistence PersistenceConfig `yaml:"persistence" mapstructure:"persistence"`
	// Attachments is the blob store for files sent with messages.
	Attachments storage.Config `yaml:"storage" mapstructure:"storage"`
	// EncryptionKey seals API keys in the persisted document when set.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
}

// dataDir is the default home of local state.
func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "chatgate")
	}
	return ".chatgate"
}

// ApplyDefaults fills unset fields. Logs go to stderr at warn level so
// they stay out of command output.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "chatctl"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()

	if c.GatewayURL == "" {
		c.GatewayURL = "http://localhost:8080"
	}

	home := dataDir()
	p := &c.Persistence
	if p.Backend == "" {
		p.Backend = BackendFile
	}
	if p.Dir == "" {
		p.Dir = home
	}
	if p.Database.DSN == "" {
		p.Database.DSN = filepath.Join(home, "chatgate.db")
	}
	if p.Bolt.Path == "" {
		p.Bolt.Path = filepath.Join(home, "chatgate.bolt")
	}
	if p.Storage.BasePath == "" {
		p.Storage.BasePath = home
	}
	p.Redis.ApplyDefaults()
	p.Database.ApplyDefaults()
	p.Bolt.ApplyDefaults()
	p.Storage.ApplyDefaults()

	if c.Attachments.BasePath == "" {
		c.Attachments.BasePath = home
	}
	c.Attachments.ApplyDefaults()
}

// Validate checks the configuration after ApplyDefaults.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config.gateway_url must be an absolute URL (got: %q)", c.GatewayURL)
	}

	p := c.Persistence
	if !slices.Contains(backends, p.Backend) {
		return fmt.Errorf("config.persistence.backend must be one of %v (got: %s)", backends, p.Backend)
	}
	switch p.Backend {
	case BackendRedis:
		err = p.Redis.Validate()
	case BackendDatabase:
		err = p.Database.Validate()
	case BackendStorage:
		err = p.Storage.Validate()
	}
	if err != nil {
		return fmt.Errorf("config.persistence: %w", err)
	}
	if err := c.Attachments.Validate(); err != nil {
		return fmt.Errorf("config.storage: %w", err)
	}
	return nil
}
