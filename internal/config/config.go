// Package config loads storefront settings from a yaml file, a .env file and STOREFRONT_
// environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "STOREFRONT_"

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Catalog CatalogConfig `koanf:"catalog"`
}

type StorageConfig struct {
	Driver   string         `koanf:"driver"`
	Path     string         `koanf:"path"`
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Locks    LocksConfig    `koanf:"locks"`
}

type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	Namespace string `koanf:"namespace"`
}

type PostgresConfig struct {
	URL     string        `koanf:"url"`
	Table   string        `koanf:"table"`
	Timeout time.Duration `koanf:"timeout"`
}

// LocksConfig sizes the striped lock guarding read-modify-write cycles.
type LocksConfig struct {
	Stripes int `koanf:"stripes"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type CatalogConfig struct {
	Related RelatedConfig `koanf:"related"`
	Page    PageConfig    `koanf:"page"`
}

type RelatedConfig struct {
	Limit int `koanf:"limit"`
}

type PageConfig struct {
	Size int `koanf:"size"`
}

func defaults() map[string]any {
	return map[string]any{
		"storage.driver":           DriverBadger,
		"storage.path":             "./data",
		"storage.redis.namespace":  "storefront",
		"storage.postgres.table":   "storefront_collections",
		"storage.postgres.timeout": "5s",
		"storage.locks.stripes":    32,
		"log.level":                "info",
		"catalog.related.limit":    8,
		"catalog.page.size":        20,
	}
}

// Load reads configFile and envFile, either of which may be missing, then the process
// environment, and validates the result.
func Load(configFile, envFile string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("failed to load config file %s: %w", configFile, err)
			}
		}
	}

	// STOREFRONT_STORAGE_REDIS_ADDR -> storage.redis.addr
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}

	if envFile != "" {
		if envFileMap, err := godotenv.Read(envFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
					envMap[envTransformer(key)] = value
				}
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading %s: %v", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error reading %s: %v", envFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading environment: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for the badger driver", ErrInvalidConfig)
		}
	case DriverMemory:
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: storage.redis.addr is required for the redis driver", ErrInvalidConfig)
		}
		if c.Storage.Redis.DB < 0 {
			return fmt.Errorf("%w: storage.redis.db must not be negative", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Storage.Postgres.URL == "" {
			return fmt.Errorf("%w: storage.postgres.url is required for the postgres driver", ErrInvalidConfig)
		}
		if c.Storage.Postgres.Timeout <= 0 {
			return fmt.Errorf("%w: storage.postgres.timeout must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if s := c.Storage.Locks.Stripes; s < 1 || s > 256 {
		return fmt.Errorf("%w: storage.locks.stripes must be within 1-256, got %d", ErrInvalidConfig, s)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}

	if c.Catalog.Related.Limit < 1 {
		return fmt.Errorf("%w: catalog.related.limit must be at least 1", ErrInvalidConfig)
	}
	if c.Catalog.Page.Size < 1 {
		return fmt.Errorf("%w: catalog.page.size must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// String returns a string representation of the configuration with secrets masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  storage.driver: %s\n", c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverBadger:
		b.WriteString(fmt.Sprintf("  storage.path: %s\n", c.Storage.Path))
	case DriverRedis:
		b.WriteString(fmt.Sprintf("  storage.redis.addr: %s\n", c.Storage.Redis.Addr))
		b.WriteString(fmt.Sprintf("  storage.redis.db: %d\n", c.Storage.Redis.DB))
		b.WriteString(fmt.Sprintf("  storage.redis.namespace: %s\n", c.Storage.Redis.Namespace))
	case DriverPostgres:
		b.WriteString(fmt.Sprintf("  storage.postgres.url: %s\n", maskURL(c.Storage.Postgres.URL)))
		b.WriteString(fmt.Sprintf("  storage.postgres.table: %s\n", c.Storage.Postgres.Table))
	}
	b.WriteString(fmt.Sprintf("  storage.locks.stripes: %d\n", c.Storage.Locks.Stripes))

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.related.limit: %d\n", c.Catalog.Related.Limit))
	b.WriteString(fmt.Sprintf("  catalog.page.size: %d\n", c.Catalog.Page.Size))

	b.WriteString("\n--- Log ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}
