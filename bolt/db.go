package bolt

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// Config is the bolt section of the persistence config.
type Config struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	// OpenTimeout bounds the wait for the file lock held by another process.
	OpenTimeout time.Duration `yaml:"open_timeout" mapstructure:"open_timeout"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "chatgate.bolt"
	}
	if c.Bucket == "" {
		c.Bucket = "documents"
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 2 * time.Second
	}
}

// DB is an open bolt file.
type DB struct {
	db *bbolt.DB
}

// Open opens or creates the file at cfg.Path and its bucket.
func Open(cfg Config) (*DB, error) {
	cfg.ApplyDefaults()
	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", cfg.Path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cfg.Bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
	}
	return &DB{db: db}, nil
}

// Close closes the file.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the file path.
func (d *DB) Path() string {
	return d.db.Path()
}
