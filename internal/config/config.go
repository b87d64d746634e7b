// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and ADMITCALC_* env vars on top of the defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"

	"github.com/okian/admitcalc/internal/adapters/repository"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the persistence backend: memory, file, sqlite, postgres or redis.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the directory used by the file driver.
	StorePath string `koanf:"store_path"`

	// StoreDSN is the data source name of the sqlite and postgres drivers.
	StoreDSN string `koanf:"store_dsn"`

	// RedisAddr and RedisDB configure the redis driver.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// KeyPrefix namespaces every persisted key.
	KeyPrefix string `koanf:"key_prefix"`

	// DebounceMS delays score-set writes until edits pause.
	DebounceMS int `koanf:"debounce_ms"`

	// WriteQueueSize bounds the persistence write queue.
	WriteQueueSize int `koanf:"write_queue_size"`

	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// Subjects optionally replaces the built-in subject catalog.
	Subjects []model.Subject `koanf:"subjects"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "json",
		Addr:           ":9080",
		StoreDriver:    string(repository.DriverFile),
		StorePath:      "./data",
		RedisAddr:      "localhost:6379",
		DebounceMS:     300,
		WriteQueueSize: 1024,
	}
}

// DebounceDelay returns DebounceMS as a duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Driver returns the configured store driver.
func (c *Config) Driver() repository.Driver {
	return repository.Driver(c.StoreDriver)
}

// StoreOptions returns the repository options for the configured driver.
func (c *Config) StoreOptions() []repository.Option {
	return []repository.Option{
		repository.WithPath(c.StorePath),
		repository.WithDSN(c.StoreDSN),
		repository.WithRedis(c.RedisAddr, c.RedisDB),
		repository.WithKeyPrefix(c.KeyPrefix),
	}
}

// Catalog builds the subject catalog, falling back to the built-in one when
// no subjects are configured.
func (c *Config) Catalog() (*subject.Catalog, error) {
	if len(c.Subjects) == 0 {
		return subject.Default(), nil
	}
	cat, err := subject.New(c.Subjects)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cat, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Driver() {
	case repository.DriverMemory, repository.DriverFile, repository.DriverSQLite, repository.DriverRedis:
	case repository.DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for the %s driver", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms must not be negative", ErrInvalidConfig)
	}
	if c.WriteQueueSize <= 0 {
		return fmt.Errorf("%w: write_queue_size must be positive", ErrInvalidConfig)
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}
